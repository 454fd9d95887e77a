package auth

import (
	"net/http"
)

const (
	// HeaderCSRF carries the CSRF prevention token in password mode.
	HeaderCSRF = "CSRFPreventionToken"

	// CookieTicket carries the session ticket in password mode.
	CookieTicket = "PVEAuthCookie"
)

// Authenticator decorates outgoing requests with credentials.
type Authenticator interface {
	// Transport wraps an http.RoundTripper with authentication.
	Transport(base http.RoundTripper) http.RoundTripper

	// Name returns the authentication scheme name.
	Name() string
}

// TokenAuth authenticates every request with a static API token header.
type TokenAuth struct {
	header string
}

// NewTokenAuth creates a token authenticator. It fails with ErrNotTokenMode
// for password credentials.
func NewTokenAuth(creds Credentials) (*TokenAuth, error) {
	h, err := creds.AuthorizationHeader()
	if err != nil {
		return nil, err
	}
	return &TokenAuth{header: h}, nil
}

// Name returns the authentication scheme name.
func (a *TokenAuth) Name() string {
	return "PVEAPIToken"
}

// Transport wraps an http.RoundTripper with token authentication.
func (a *TokenAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		reqCopy := req.Clone(req.Context())
		reqCopy.Header.Set("Authorization", a.header)
		return base.RoundTrip(reqCopy)
	})
}

// TicketAuth authenticates requests with a session ticket obtained by Login.
type TicketAuth struct {
	ticket *SessionTicket
}

// NewTicketAuth creates a ticket authenticator.
func NewTicketAuth(ticket *SessionTicket) *TicketAuth {
	return &TicketAuth{ticket: ticket}
}

// Name returns the authentication scheme name.
func (a *TicketAuth) Name() string {
	return "PVEAuthCookie"
}

// Transport wraps an http.RoundTripper with ticket authentication. The
// ticket cookie is added to every request; the CSRF token only to
// state-changing ones.
func (a *TicketAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		reqCopy := req.Clone(req.Context())
		reqCopy.AddCookie(&http.Cookie{Name: CookieTicket, Value: a.ticket.Ticket})
		if needsCSRF(req.Method) {
			reqCopy.Header.Set(HeaderCSRF, a.ticket.CSRFToken)
		}
		return base.RoundTrip(reqCopy)
	})
}

func needsCSRF(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
