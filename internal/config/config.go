// Package config loads credential files for the command-line tools.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-pve/pveapi/auth"
)

// File is the on-disk credential file layout:
//
//	hostname: pve.example.com
//	port: 8006
//	realm: pam
//	username: root
//	token_name: automation
//	token_value: 00000000-0000-0000-0000-000000000000
//
// Keys left out of the file stay absent from the resulting source, so the
// usual defaults and method selection apply.
type File struct {
	Hostname   *string `yaml:"hostname"`
	Port       *string `yaml:"port"`
	Realm      *string `yaml:"realm"`
	Username   *string `yaml:"username"`
	Password   *string `yaml:"password"`
	TokenName  *string `yaml:"token_name"`
	TokenValue *string `yaml:"token_value"`
}

// Source converts the file to a credential source, keeping only the keys
// that were present.
func (f *File) Source() auth.Map {
	m := auth.Map{}
	set := func(key string, v *string) {
		if v != nil {
			m[key] = *v
		}
	}
	set(auth.KeyHostname, f.Hostname)
	set(auth.KeyPort, f.Port)
	set(auth.KeyRealm, f.Realm)
	set(auth.KeyUsername, f.Username)
	set(auth.KeyPassword, f.Password)
	set(auth.KeyTokenName, f.TokenName)
	set(auth.KeyTokenValue, f.TokenValue)
	return m
}

// Load reads and parses a credential file. Files readable by group or
// others are rejected when they contain a secret.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if (f.Password != nil || f.TokenValue != nil) && info.Mode().Perm()&0o077 != 0 {
		return nil, ErrInsecurePermissions
	}
	return &f, nil
}

// ErrInsecurePermissions is returned for secret-bearing files that are not
// private to their owner.
var ErrInsecurePermissions = errors.New("config: credential file must not be accessible by group or others (chmod 600)")
