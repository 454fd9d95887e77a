package auth

import (
	"fmt"
	"log/slog"
)

const (
	// DefaultPort is the Proxmox VE API port.
	DefaultPort = "8006"

	// DefaultRealm is the local system-account realm.
	DefaultRealm = "pam"
)

// Method specifies how Credentials authenticate.
type Method int

const (
	// MethodToken authenticates every request with a static API token header.
	MethodToken Method = iota + 1
	// MethodPassword authenticates once with a login exchange and then uses
	// the resulting session ticket.
	MethodPassword
)

// String returns the string representation of the method.
func (m Method) String() string {
	switch m {
	case MethodToken:
		return "token"
	case MethodPassword:
		return "password"
	default:
		return "unknown"
	}
}

// Credentials is the canonical, immutable credential record. Build one with
// Normalize or NormalizeAny; the zero value is not usable.
type Credentials struct {
	hostname string
	port     string
	realm    string
	method   Method
	username string

	password string

	tokenName  string
	tokenValue string
}

// Hostname returns the API host name or address.
func (c Credentials) Hostname() string { return c.hostname }

// Port returns the API port.
func (c Credentials) Port() string { return c.port }

// Realm returns the authentication realm.
func (c Credentials) Realm() string { return c.realm }

// Method returns the authentication method.
func (c Credentials) Method() Method { return c.method }

// Username returns the user name without the realm suffix.
func (c Credentials) Username() string { return c.username }

// Password returns the password. It is empty in token mode.
func (c Credentials) Password() string { return c.password }

// TokenName returns the API token ID. It is empty in password mode.
func (c Credentials) TokenName() string { return c.tokenName }

// TokenValue returns the API token secret. It is empty in password mode.
func (c Credentials) TokenValue() string { return c.tokenValue }

// APIURL returns the base URL of the API, e.g. "https://pve:8006/api2".
func (c Credentials) APIURL() string {
	return "https://" + c.hostname + ":" + c.port + "/api2"
}

// AuthorizationHeader returns the value of the Authorization header used in
// token mode. In password mode it returns ErrNotTokenMode.
func (c Credentials) AuthorizationHeader() (string, error) {
	if c.method != MethodToken {
		return "", ErrNotTokenMode
	}
	return fmt.Sprintf("PVEAPIToken=%s@%s!%s=%s", c.username, c.realm, c.tokenName, c.tokenValue), nil
}

// String returns a summary safe for display. The password and token value
// are never included.
func (c Credentials) String() string {
	if c.method == MethodToken {
		return fmt.Sprintf("[Host: %s:%s], [Username: %s@%s], [Token: %s].",
			c.hostname, c.port, c.username, c.realm, c.tokenName)
	}
	return fmt.Sprintf("[Host: %s:%s], [Username: %s@%s].",
		c.hostname, c.port, c.username, c.realm)
}

// LogValue implements slog.LogValuer so secrets never reach log output.
func (c Credentials) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("hostname", c.hostname),
		slog.String("port", c.port),
		slog.String("username", c.username),
		slog.String("realm", c.realm),
		slog.String("method", c.method.String()),
	}
	if c.method == MethodToken {
		attrs = append(attrs,
			slog.String("token_name", c.tokenName),
			slog.String("token_value", redacted))
	} else {
		attrs = append(attrs, slog.String("password", redacted))
	}
	return slog.GroupValue(attrs...)
}

const redacted = "[REDACTED]"
