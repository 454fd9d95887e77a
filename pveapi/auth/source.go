package auth

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Canonical credential keys.
const (
	KeyHostname   = "hostname"
	KeyPort       = "port"
	KeyRealm      = "realm"
	KeyUsername   = "username"
	KeyPassword   = "password"
	KeyTokenName  = "tokenName"
	KeyTokenValue = "tokenValue"
)

var (
	tokenKeys    = []string{KeyHostname, KeyUsername, KeyTokenName, KeyTokenValue}
	passwordKeys = []string{KeyHostname, KeyUsername, KeyPassword}
)

// CredentialSource exposes credential data as a canonical key/value view.
// Presence of a key matters, not its value: an empty string still counts as
// present.
type CredentialSource interface {
	CredentialFields() map[string]string
}

// Map is a CredentialSource backed by a plain map keyed by the canonical
// key names.
type Map map[string]string

// CredentialFields implements CredentialSource.
func (m Map) CredentialFields() map[string]string {
	return m
}

// TokenInput selects token authentication. Port and Realm fall back to
// DefaultPort and DefaultRealm when empty.
type TokenInput struct {
	Hostname   string
	Port       string
	Realm      string
	Username   string
	TokenName  string
	TokenValue string
}

// CredentialFields implements CredentialSource.
func (in TokenInput) CredentialFields() map[string]string {
	fields := map[string]string{
		KeyHostname:   in.Hostname,
		KeyUsername:   in.Username,
		KeyTokenName:  in.TokenName,
		KeyTokenValue: in.TokenValue,
	}
	setOptional(fields, in.Port, in.Realm)
	return fields
}

// PasswordInput selects password authentication. Port and Realm fall back
// to DefaultPort and DefaultRealm when empty.
type PasswordInput struct {
	Hostname string
	Port     string
	Realm    string
	Username string
	Password string
}

// CredentialFields implements CredentialSource.
func (in PasswordInput) CredentialFields() map[string]string {
	fields := map[string]string{
		KeyHostname: in.Hostname,
		KeyUsername: in.Username,
		KeyPassword: in.Password,
	}
	setOptional(fields, in.Port, in.Realm)
	return fields
}

func setOptional(fields map[string]string, port, realm string) {
	if port != "" {
		fields[KeyPort] = port
	}
	if realm != "" {
		fields[KeyRealm] = realm
	}
}

// structSource holds the exported string fields of a caller struct.
type structSource map[string]string

func (s structSource) CredentialFields() map[string]string {
	return s
}

// FromStruct adapts a struct (or pointer to struct) to a CredentialSource.
//
// Only exported fields declared directly on the struct are considered; the
// key is taken from a `pve:"name"` tag or, failing that, the field name with
// its first letter lowered (TokenName -> tokenName). A tag of "-" skips the
// field. Unexported fields and fields promoted from embedded structs never
// satisfy a required key, even if they hold data.
func FromStruct(v any) (CredentialSource, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, malformed("nil credentials")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, malformed("unsupported credentials type %T", v)
	}

	rt := rv.Type()
	fields := make(structSource)
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		key := f.Tag.Get("pve")
		if key == "-" {
			continue
		}
		if key == "" {
			key = lowerFirst(f.Name)
		}
		if !isKnownKey(key) {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() != reflect.String {
			return nil, malformed("field %s of %T is %s, want string", f.Name, v, fv.Kind())
		}
		fields[key] = fv.String()
	}
	return fields, nil
}

func isKnownKey(key string) bool {
	switch key {
	case KeyHostname, KeyPort, KeyRealm, KeyUsername, KeyPassword, KeyTokenName, KeyTokenValue:
		return true
	}
	return false
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
