package client

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NIST SP 800-92 shaped event types
const (
	EventAuthentication   = "authentication"
	EventSessionLifecycle = "session_lifecycle"
	EventRequest          = "request"
)

// Security event subtypes
const (
	SubtypeAuthAttempt   = "attempt"
	SubtypeAuthSuccess   = "success"
	SubtypeAuthFailure   = "failure"
	SubtypeSessionOpen   = "open"
	SubtypeRequestDenied = "denied"
)

// Security event outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
	OutcomeAttempt = "attempt"
)

// Security event severities
const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// SecurityEvent is a structured security log record.
type SecurityEvent struct {
	Timestamp string `json:"timestamp"` // RFC 3339 UTC
	EventType string `json:"event_type"`
	Subtype   string `json:"subtype"`
	Severity  string `json:"severity"`

	User          string `json:"user,omitempty"` // user@realm, never a secret
	Source        string `json:"source"`
	Target        string `json:"target"`
	CorrelationID string `json:"correlation_id"`

	Outcome string         `json:"outcome"`
	Details map[string]any `json:"details,omitempty"`
}

// String returns the JSON representation of the event.
func (e *SecurityEvent) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// SecurityLogger writes security events for one client session. A nil
// logger discards events.
type SecurityLogger struct {
	logger        *slog.Logger
	user          string
	target        string
	correlationID string
	clock         Clock
}

// NewSecurityLogger creates a logger with a fresh correlation ID.
func NewSecurityLogger(logger *slog.Logger, user, target string) *SecurityLogger {
	return &SecurityLogger{
		logger:        logger,
		user:          user,
		target:        target,
		correlationID: uuid.New().String(),
		clock:         realClock{},
	}
}

// CorrelationID returns the session-scoped correlation ID.
func (l *SecurityLogger) CorrelationID() string {
	return l.correlationID
}

// LogEvent constructs and logs a security event.
func (l *SecurityLogger) LogEvent(eventType, subtype, severity, outcome string, details map[string]any) {
	if l == nil || l.logger == nil {
		return
	}

	event := &SecurityEvent{
		Timestamp:     l.clock.Now().UTC().Format(time.RFC3339),
		EventType:     eventType,
		Subtype:       subtype,
		Severity:      severity,
		User:          l.user,
		Source:        "go-pve",
		Target:        l.target,
		CorrelationID: l.correlationID,
		Outcome:       outcome,
		Details:       details,
	}

	switch severity {
	case SeverityWarning:
		l.logger.Warn("SecurityEvent", "event", event)
	case SeverityError:
		l.logger.Error("SecurityEvent", "event", event)
	default:
		l.logger.Info("SecurityEvent", "event", event)
	}
}

// LogAuthentication logs authentication events.
func (l *SecurityLogger) LogAuthentication(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventAuthentication, subtype, severity, outcome, details)
}

// LogSession logs session lifecycle events.
func (l *SecurityLogger) LogSession(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventSessionLifecycle, subtype, severity, outcome, details)
}

// LogRequest logs request events worth auditing, such as denials.
func (l *SecurityLogger) LogRequest(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventRequest, subtype, severity, outcome, details)
}
