package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/smnsjas/go-pve/pveapi/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records the login request and replays a canned response.
type fakeSender struct {
	resp *transport.Response
	err  error

	method string
	url    string
	header http.Header
	body   []byte
	calls  int
}

func (f *fakeSender) Do(_ context.Context, method, url string, header http.Header, body []byte) (*transport.Response, error) {
	f.calls++
	f.method = method
	f.url = url
	f.header = header
	f.body = body
	return f.resp, f.err
}

func okResponse(body string) *transport.Response {
	return &transport.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(body)}
}

func passwordCreds(t *testing.T) Credentials {
	t.Helper()
	return mustNormalize(t, PasswordInput{Hostname: "pve.local", Username: "root", Password: "p@ss word"})
}

func TestLogin_Success(t *testing.T) {
	sender := &fakeSender{resp: okResponse(`{"data":{"CSRFPreventionToken":"4EEC61E2:lwk7od","ticket":"PVE:root@pam:4EEC61E2::sig","username":"root@pam","cap":{}}}`)}

	ticket, err := Login(context.Background(), passwordCreds(t), sender)
	require.NoError(t, err)

	assert.Equal(t, "4EEC61E2:lwk7od", ticket.CSRFToken)
	assert.Equal(t, "PVE:root@pam:4EEC61E2::sig", ticket.Ticket)
	assert.Equal(t, "root@pam", ticket.Username)
	assert.False(t, ticket.IssuedAt.IsZero())

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, http.MethodPost, sender.method)
	assert.Equal(t, "https://pve.local:8006/api2/json/access/ticket", sender.url)
	assert.Equal(t, transport.ContentTypeForm, sender.header.Get("Content-Type"))
	assert.Empty(t, sender.header.Get("Authorization"))

	form, err := url.ParseQuery(string(sender.body))
	require.NoError(t, err)
	assert.Equal(t, "root", form.Get("username"))
	assert.Equal(t, "p@ss word", form.Get("password"))
	assert.Equal(t, "pam", form.Get("realm"))
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name       string
		sender     *fakeSender
		wantKind   AuthErrorKind
		wantStatus int
	}{
		{
			name:     "transport error",
			sender:   &fakeSender{err: errors.New("dial tcp: lookup proxmox.example.tld: no such host")},
			wantKind: KindTransport,
		},
		{
			name:     "timeout",
			sender:   &fakeSender{err: context.DeadlineExceeded},
			wantKind: KindTransport,
		},
		{
			name:       "401 rejection",
			sender:     &fakeSender{resp: &transport.Response{StatusCode: http.StatusUnauthorized, Body: []byte("authentication failure")}},
			wantKind:   KindRejected,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "403 rejection",
			sender:     &fakeSender{resp: &transport.Response{StatusCode: http.StatusForbidden, Body: []byte("permission denied")}},
			wantKind:   KindRejected,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "200 with null data",
			sender:     &fakeSender{resp: okResponse(`{"data":null}`)},
			wantKind:   KindRejected,
			wantStatus: http.StatusOK,
		},
		{
			name:       "server error",
			sender:     &fakeSender{resp: &transport.Response{StatusCode: http.StatusInternalServerError, Body: []byte("boom")}},
			wantKind:   KindTransport,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "not json",
			sender:     &fakeSender{resp: okResponse(`<html>proxy</html>`)},
			wantKind:   KindMalformedResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing ticket",
			sender:     &fakeSender{resp: okResponse(`{"data":{"CSRFPreventionToken":"c","username":"root@pam"}}`)},
			wantKind:   KindMalformedResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing csrf token",
			sender:     &fakeSender{resp: okResponse(`{"data":{"ticket":"t","username":"root@pam"}}`)},
			wantKind:   KindMalformedResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing username",
			sender:     &fakeSender{resp: okResponse(`{"data":{"CSRFPreventionToken":"c","ticket":"t"}}`)},
			wantKind:   KindMalformedResponse,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := Login(context.Background(), passwordCreds(t), tt.sender)
			require.Error(t, err)
			assert.Nil(t, ticket)

			var ae *AuthenticationError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.wantKind, ae.Kind)
			assert.Equal(t, tt.wantStatus, ae.StatusCode)
			assert.True(t, IsAuthenticationError(err, tt.wantKind))
			assert.NotContains(t, err.Error(), "p@ss word")
		})
	}
}

func TestLogin_TransportErrorUnwraps(t *testing.T) {
	_, err := Login(context.Background(), passwordCreds(t), &fakeSender{err: context.DeadlineExceeded})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsRejected(err))
}

func TestLogin_TokenCredentials(t *testing.T) {
	creds := mustNormalize(t, TokenInput{Hostname: "h", Username: "root", TokenName: "t", TokenValue: "v"})
	sender := &fakeSender{}

	_, err := Login(context.Background(), creds, sender)
	require.ErrorIs(t, err, ErrNotPasswordMode)
	assert.False(t, IsRejected(err))
	var ae *AuthenticationError
	assert.False(t, errors.As(err, &ae))
	assert.Equal(t, 0, sender.calls)
}
