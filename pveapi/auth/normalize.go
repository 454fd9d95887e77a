package auth

import (
	"fmt"
	"reflect"
)

// Normalize validates src and builds Credentials.
//
// The method is chosen before completeness is checked: if either tokenName
// or tokenValue is present the input is treated as a token attempt, even if
// a password is present too. All required keys for that method must then be
// present. Realm and port default to DefaultRealm and DefaultPort when
// absent. Values are copied verbatim.
func Normalize(src CredentialSource) (Credentials, error) {
	if src == nil || isNilSource(src) {
		return Credentials{}, malformed("nil credentials")
	}
	fields := src.CredentialFields()
	if fields == nil {
		return Credentials{}, malformed("credential source returned no fields")
	}

	method := MethodPassword
	required := passwordKeys
	if has(fields, KeyTokenName) || has(fields, KeyTokenValue) {
		method = MethodToken
		required = tokenKeys
	}

	var missing []string
	for _, key := range required {
		if !has(fields, key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Credentials{}, &MalformedCredentialsError{
			Reason:  method.String() + " credentials are incomplete",
			Missing: missing,
		}
	}

	c := Credentials{
		hostname: fields[KeyHostname],
		username: fields[KeyUsername],
		realm:    DefaultRealm,
		port:     DefaultPort,
		method:   method,
	}
	if realm, ok := fields[KeyRealm]; ok {
		c.realm = realm
	}
	if port, ok := fields[KeyPort]; ok {
		c.port = port
	}
	if method == MethodToken {
		c.tokenName = fields[KeyTokenName]
		c.tokenValue = fields[KeyTokenValue]
	} else {
		c.password = fields[KeyPassword]
	}
	return c, nil
}

// NormalizeAny accepts credential data in whichever structured form the
// caller has it: a CredentialSource, a map[string]string, a map[string]any
// holding string values, or a struct (see FromStruct). Any other shape,
// including slices and scalars, fails with ErrMalformedCredentials.
func NormalizeAny(raw any) (Credentials, error) {
	switch v := raw.(type) {
	case nil:
		return Credentials{}, malformed("nil credentials")
	case CredentialSource:
		return Normalize(v)
	case map[string]string:
		return Normalize(Map(v))
	case map[string]any:
		m := make(Map, len(v))
		for key, val := range v {
			if !isKnownKey(key) {
				continue
			}
			s, ok := val.(string)
			if !ok {
				return Credentials{}, malformed("key %s is %T, want string", key, val)
			}
			m[key] = s
		}
		return Normalize(m)
	}

	src, err := FromStruct(raw)
	if err != nil {
		return Credentials{}, fmt.Errorf("normalize %T: %w", raw, err)
	}
	return Normalize(src)
}

func has(fields map[string]string, key string) bool {
	_, ok := fields[key]
	return ok
}

func isNilSource(src CredentialSource) bool {
	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
