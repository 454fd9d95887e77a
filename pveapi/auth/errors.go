package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedCredentials matches every *MalformedCredentialsError.
var ErrMalformedCredentials = errors.New("auth: malformed credentials")

// ErrNotTokenMode is returned by Credentials.AuthorizationHeader when the
// credentials authenticate with a password.
var ErrNotTokenMode = errors.New("auth: authorization header not applicable in password mode")

// ErrNotPasswordMode is returned by Login when given token credentials.
// No request is sent in that case.
var ErrNotPasswordMode = errors.New("auth: login requires password credentials")

// MalformedCredentialsError reports credential input that cannot be used.
// It never carries field values.
type MalformedCredentialsError struct {
	// Reason describes why the input was rejected.
	Reason string

	// Missing lists required fields that were absent or not accessible.
	Missing []string
}

// Error implements the error interface.
func (e *MalformedCredentialsError) Error() string {
	msg := "auth: malformed credentials"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.Missing) > 0 {
		msg += " (missing: " + strings.Join(e.Missing, ", ") + ")"
	}
	return msg
}

// Is reports whether target is ErrMalformedCredentials.
func (e *MalformedCredentialsError) Is(target error) bool {
	return target == ErrMalformedCredentials
}

func malformed(format string, args ...any) error {
	return &MalformedCredentialsError{Reason: fmt.Sprintf(format, args...)}
}

// AuthErrorKind classifies a failed login exchange.
type AuthErrorKind int

const (
	// KindTransport means the login request never produced a usable HTTP
	// response (DNS, connection, TLS, timeout) or the server failed it.
	KindTransport AuthErrorKind = iota + 1
	// KindRejected means the server refused the supplied credentials.
	KindRejected
	// KindMalformedResponse means the server accepted the login but the
	// response did not match the documented shape.
	KindMalformedResponse
)

// String returns the string representation of the kind.
func (k AuthErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// AuthenticationError is returned by Login.
type AuthenticationError struct {
	// Kind classifies the failure.
	Kind AuthErrorKind

	// StatusCode is the HTTP status of the login response, or 0 when no
	// response was received.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	msg := "auth: login failed: " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError returns true if err is an *AuthenticationError of
// the given kind.
func IsAuthenticationError(err error, kind AuthErrorKind) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae) && ae.Kind == kind
}

// IsRejected returns true if the server refused the credentials.
func IsRejected(err error) bool {
	return IsAuthenticationError(err, KindRejected)
}
