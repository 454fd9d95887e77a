package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smnsjas/go-pve/pveapi/transport"
)

// Sender is the HTTP transport consumed by Login.
// *transport.HTTPTransport implements it.
type Sender interface {
	Do(ctx context.Context, method, url string, header http.Header, body []byte) (*transport.Response, error)
}

// ticketPath is the login endpoint relative to Credentials.APIURL.
const ticketPath = "/json/access/ticket"

// loginResponse mirrors {"data":{"CSRFPreventionToken":..,"ticket":..,"username":..}}.
// Pointers distinguish absent members from empty ones.
type loginResponse struct {
	Data *struct {
		CSRFPreventionToken *string `json:"CSRFPreventionToken"`
		Ticket              *string `json:"ticket"`
		Username            *string `json:"username"`
	} `json:"data"`
}

// Login performs the password login exchange and returns the session ticket.
//
// It POSTs username, password and realm as form fields to the access/ticket
// endpoint. Transport failures (including a context deadline) yield
// KindTransport; a 401/403, or a success response without data, yields
// KindRejected; a success response missing any expected member yields
// KindMalformedResponse. Token credentials fail with ErrNotPasswordMode
// before any request is sent. Login never retries.
func Login(ctx context.Context, creds Credentials, sender Sender) (*SessionTicket, error) {
	if creds.Method() != MethodPassword {
		return nil, ErrNotPasswordMode
	}

	form := url.Values{}
	form.Set("username", creds.Username())
	form.Set("password", creds.Password())
	form.Set("realm", creds.Realm())

	header := http.Header{}
	header.Set("Content-Type", transport.ContentTypeForm)

	resp, err := sender.Do(ctx, http.MethodPost, creds.APIURL()+ticketPath, header, []byte(form.Encode()))
	if err != nil {
		return nil, &AuthenticationError{Kind: KindTransport, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthenticationError{Kind: KindRejected, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &AuthenticationError{
			Kind:       KindTransport,
			StatusCode: resp.StatusCode,
			Err:        transport.CheckStatus(resp),
		}
	}

	var lr loginResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil {
		return nil, &AuthenticationError{Kind: KindMalformedResponse, StatusCode: resp.StatusCode, Err: err}
	}
	if lr.Data == nil {
		// Older servers answer bad credentials with 200 and "data": null.
		return nil, &AuthenticationError{Kind: KindRejected, StatusCode: resp.StatusCode}
	}

	var missing []string
	if lr.Data.CSRFPreventionToken == nil {
		missing = append(missing, "CSRFPreventionToken")
	}
	if lr.Data.Ticket == nil {
		missing = append(missing, "ticket")
	}
	if lr.Data.Username == nil {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return nil, &AuthenticationError{
			Kind:       KindMalformedResponse,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response missing " + strings.Join(missing, ", ")),
		}
	}

	return &SessionTicket{
		CSRFToken: *lr.Data.CSRFPreventionToken,
		Ticket:    *lr.Data.Ticket,
		Username:  *lr.Data.Username,
		IssuedAt:  time.Now(),
	}, nil
}
