package client

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityLogger_LogEvent(t *testing.T) {
	var buf bytes.Buffer
	l := NewSecurityLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "root@pam", "https://pve:8006/api2")
	l.clock = &mockClock{current: time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)}

	l.LogAuthentication(SubtypeAuthFailure, OutcomeFailure, SeverityWarning, map[string]any{"kind": "rejected"})

	var record struct {
		Level string        `json:"level"`
		Msg   string        `json:"msg"`
		Event SecurityEvent `json:"event"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "WARN", record.Level)
	assert.Equal(t, "SecurityEvent", record.Msg)
	assert.Equal(t, "2026-10-19T08:30:00Z", record.Event.Timestamp)
	assert.Equal(t, EventAuthentication, record.Event.EventType)
	assert.Equal(t, SubtypeAuthFailure, record.Event.Subtype)
	assert.Equal(t, "root@pam", record.Event.User)
	assert.Equal(t, "go-pve", record.Event.Source)
	assert.Equal(t, "https://pve:8006/api2", record.Event.Target)
	assert.Equal(t, "rejected", record.Event.Details["kind"])

	_, err := uuid.Parse(record.Event.CorrelationID)
	assert.NoError(t, err)
}

func TestSecurityLogger_CorrelationIDPerSession(t *testing.T) {
	a := NewSecurityLogger(nil, "u", "t")
	b := NewSecurityLogger(nil, "u", "t")
	assert.NotEqual(t, a.CorrelationID(), b.CorrelationID())
}

func TestSecurityLogger_NilSafe(t *testing.T) {
	var l *SecurityLogger
	l.LogSession(SubtypeSessionOpen, OutcomeSuccess, SeverityInfo, nil)

	NewSecurityLogger(nil, "u", "t").LogRequest(SubtypeRequestDenied, OutcomeDenied, SeverityWarning, nil)
}

func TestSecurityEvent_String(t *testing.T) {
	e := &SecurityEvent{EventType: EventSessionLifecycle, Subtype: SubtypeSessionOpen, Outcome: OutcomeSuccess}
	assert.Contains(t, e.String(), `"event_type":"session_lifecycle"`)
	assert.NotContains(t, e.String(), "details")
}
