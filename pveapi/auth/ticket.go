package auth

import (
	"log/slog"
	"time"
)

// TicketLifetime is how long the server accepts a session ticket after it
// was issued.
const TicketLifetime = 2 * time.Hour

// SessionTicket is the result of a successful password login. It is written
// once by Login and read-only afterwards.
type SessionTicket struct {
	// CSRFToken is sent as the CSRFPreventionToken header on
	// state-changing requests.
	CSRFToken string

	// Ticket is sent as the PVEAuthCookie cookie on every request.
	Ticket string

	// Username is the authenticated user as reported by the server,
	// including the realm (e.g. "root@pam").
	Username string

	// IssuedAt is when the login response was received.
	IssuedAt time.Time
}

// ExpiresAt returns when the server stops accepting the ticket.
func (t *SessionTicket) ExpiresAt() time.Time {
	return t.IssuedAt.Add(TicketLifetime)
}

// Expired reports whether the ticket has expired at now.
func (t *SessionTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt())
}

// LogValue implements slog.LogValuer.
func (t *SessionTicket) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", t.Username),
		slog.Time("issued_at", t.IssuedAt),
		slog.String("ticket", redacted),
		slog.String("csrf", redacted),
	)
}
