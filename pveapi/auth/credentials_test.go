package auth

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, src CredentialSource) Credentials {
	t.Helper()
	creds, err := Normalize(src)
	require.NoError(t, err)
	return creds
}

func TestCredentials_APIURL(t *testing.T) {
	tests := []struct {
		name string
		src  CredentialSource
		want string
	}{
		{
			name: "defaults",
			src:  PasswordInput{Hostname: "pve.example.com", Username: "root", Password: "pw"},
			want: "https://pve.example.com:8006/api2",
		},
		{
			name: "custom port",
			src:  TokenInput{Hostname: "10.1.1.1", Port: "443", Username: "root", TokenName: "t", TokenValue: "v"},
			want: "https://10.1.1.1:443/api2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustNormalize(t, tt.src).APIURL())
		})
	}
}

func TestCredentials_String(t *testing.T) {
	token := mustNormalize(t, TokenInput{
		Hostname: "h", Username: "root", TokenName: "myapitoken", TokenValue: testTokenValue,
	})
	assert.Equal(t, "[Host: h:8006], [Username: root@pam], [Token: myapitoken].", token.String())
	assert.NotContains(t, token.String(), testTokenValue)

	password := mustNormalize(t, PasswordInput{Hostname: "h", Username: "root", Password: "hunter2"})
	assert.Equal(t, "[Host: h:8006], [Username: root@pam].", password.String())
	assert.NotContains(t, password.String(), "hunter2")
}

// TestCredentials_LogRedaction verifies that secrets never reach slog output.
func TestCredentials_LogRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	secretPass := "SecretCredPass123!"
	password := mustNormalize(t, PasswordInput{Hostname: "h", Username: "admin", Password: secretPass})
	token := mustNormalize(t, TokenInput{Hostname: "h", Username: "admin", TokenName: "ci", TokenValue: testTokenValue})

	logger.Info("credentials", "creds", password)
	logger.Info("credentials", "creds", &token)

	out := buf.String()
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "ci")
	assert.NotContains(t, out, secretPass)
	assert.NotContains(t, out, testTokenValue)
	assert.Contains(t, out, "REDACTED")
}

func TestCredentials_FormatVerbsRedact(t *testing.T) {
	creds := mustNormalize(t, PasswordInput{Hostname: "h", Username: "root", Password: "hunter2"})
	for _, out := range []string{
		creds.String(),
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%s", &creds),
	} {
		assert.NotContains(t, out, "hunter2")
	}
}

func TestSessionTicket_Expiry(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	ticket := &SessionTicket{Ticket: "PVE:root@pam:ABC", CSRFToken: "csrf", Username: "root@pam", IssuedAt: issued}

	assert.Equal(t, issued.Add(2*time.Hour), ticket.ExpiresAt())
	assert.False(t, ticket.Expired(issued.Add(time.Hour)))
	assert.True(t, ticket.Expired(issued.Add(2*time.Hour)))
}

func TestSessionTicket_LogRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ticket := &SessionTicket{Ticket: "PVE:root@pam:SECRET", CSRFToken: "csrf-secret", Username: "root@pam"}
	logger.Info("login", "ticket", ticket)

	out := buf.String()
	assert.Contains(t, out, "root@pam")
	assert.NotContains(t, out, "SECRET")
	assert.NotContains(t, out, "csrf-secret")
}
