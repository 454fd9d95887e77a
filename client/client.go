package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/smnsjas/go-pve/pveapi"
	"github.com/smnsjas/go-pve/pveapi/auth"
	"github.com/smnsjas/go-pve/pveapi/transport"
)

// Config holds configuration for a client session. Connection identity
// (host, port, realm, user, secrets) comes from the credential source.
type Config struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification.
	// WARNING: Only use for lab setups with the default self-signed certificate.
	InsecureSkipVerify bool

	// TLSConfig overrides the TLS configuration (e.g. to trust the cluster CA).
	TLSConfig *tls.Config

	// Proxy is an optional proxy URL, or "direct" to bypass the environment.
	Proxy string

	// RateLimit caps requests per second; 0 disables limiting.
	RateLimit float64

	// RateBurst is the limiter burst size.
	RateBurst int

	// Logger receives request traces and security events. Nil discards them.
	Logger *slog.Logger

	// Metrics, if set, records logins and requests. Create it once with
	// NewMetrics and share it between clients.
	Metrics *Metrics

	// Clock stamps and ages session tickets. Nil uses the system clock.
	Clock Clock
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   transport.DefaultTimeout,
		RateBurst: 1,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return errors.New("rate burst must be at least 1 when rate limiting")
	}
	return nil
}

// Client is an authenticated Proxmox VE API session. All fields are set
// during New and never change, so a Client is safe for concurrent use.
type Client struct {
	creds         auth.Credentials
	ticket        *auth.SessionTicket
	authenticator auth.Authenticator

	transport *transport.HTTPTransport
	api       *pveapi.Client
	logger    *slog.Logger
	security  *SecurityLogger
	metrics   *Metrics
	clock     Clock
}

// New normalizes src and opens a session.
//
// With token credentials no request is made; every call carries the API
// token header. With password credentials New performs the login exchange
// once and caches the session ticket for the life of the Client. Any
// failure aborts construction: no partially authenticated Client is ever
// returned.
func New(ctx context.Context, src auth.CredentialSource, cfg Config) (*Client, error) {
	creds, err := auth.Normalize(src)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, creds, cfg)
}

// NewFromAny is like New but accepts credential data in any shape
// understood by auth.NormalizeAny (maps, structs, CredentialSources).
func NewFromAny(ctx context.Context, raw any, cfg Config) (*Client, error) {
	creds, err := auth.NormalizeAny(raw)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, creds, cfg)
}

func newClient(ctx context.Context, creds auth.Credentials, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := []transport.HTTPTransportOption{
		transport.WithLogger(logger),
		transport.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		transport.WithProxy(cfg.Proxy),
		transport.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.Timeout))
	}
	if cfg.TLSConfig != nil {
		opts = append(opts, transport.WithTLSConfig(cfg.TLSConfig))
	}
	tr := transport.NewHTTPTransport(opts...)

	c := &Client{
		creds:     creds,
		transport: tr,
		logger:    logger,
		security:  NewSecurityLogger(logger, creds.Username()+"@"+creds.Realm(), creds.APIURL()),
		metrics:   cfg.Metrics,
		clock:     cfg.Clock,
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	c.security.clock = c.clock

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	// Decorate every later request; the login itself went out undecorated.
	tr.Client().Transport = c.authenticator.Transport(tr.Client().Transport)

	apiOpts := []pveapi.ClientOption{pveapi.WithLogger(logger)}
	if c.metrics != nil {
		apiOpts = append(apiOpts, pveapi.WithObserver(c.metrics))
	}
	c.api = pveapi.NewClient(creds.APIURL(), tr, apiOpts...)

	c.security.LogSession(SubtypeSessionOpen, OutcomeSuccess, SeverityInfo, map[string]any{
		"method": creds.Method().String(),
	})
	return c, nil
}

// authenticate selects the authenticator for the credential method.
func (c *Client) authenticate(ctx context.Context) error {
	method := c.creds.Method().String()

	if c.creds.Method() == auth.MethodToken {
		a, err := auth.NewTokenAuth(c.creds)
		if err != nil {
			return err
		}
		c.authenticator = a
		c.metrics.observeLogin(method, OutcomeSuccess)
		return nil
	}

	c.security.LogAuthentication(SubtypeAuthAttempt, OutcomeAttempt, SeverityInfo, map[string]any{
		"method": method,
	})

	ticket, err := auth.Login(ctx, c.creds, c.transport)
	if err != nil {
		details := map[string]any{"method": method}
		var ae *auth.AuthenticationError
		if errors.As(err, &ae) {
			details["kind"] = ae.Kind.String()
			if ae.StatusCode != 0 {
				details["status"] = ae.StatusCode
			}
		}
		c.security.LogAuthentication(SubtypeAuthFailure, OutcomeFailure, SeverityWarning, details)
		c.metrics.observeLogin(method, OutcomeFailure)
		return err
	}

	ticket.IssuedAt = c.clock.Now()

	c.security.LogAuthentication(SubtypeAuthSuccess, OutcomeSuccess, SeverityInfo, map[string]any{
		"method":     method,
		"expires_at": ticket.ExpiresAt().UTC().Format(time.RFC3339),
	})
	c.metrics.observeLogin(method, OutcomeSuccess)
	c.ticket = ticket
	c.authenticator = auth.NewTicketAuth(ticket)
	return nil
}

// Credentials returns the normalized credentials.
func (c *Client) Credentials() auth.Credentials {
	return c.creds
}

// Ticket returns a copy of the session ticket. ok is false in token mode.
func (c *Client) Ticket() (ticket auth.SessionTicket, ok bool) {
	if c.ticket == nil {
		return auth.SessionTicket{}, false
	}
	return *c.ticket, true
}

// TicketExpired reports whether the session ticket has expired. It is
// always false in token mode.
func (c *Client) TicketExpired() bool {
	return c.ticket != nil && c.ticket.Expired(c.clock.Now())
}

// Endpoint returns the API base URL.
func (c *Client) Endpoint() string {
	return c.creds.APIURL()
}

// AuthScheme returns the name of the authentication scheme in use.
func (c *Client) AuthScheme() string {
	return c.authenticator.Name()
}

// CorrelationID returns the ID tying this session's security events together.
func (c *Client) CorrelationID() string {
	return c.security.CorrelationID()
}

// Get reads the resource at path, e.g. "/nodes".
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, path, params)
}

// Create creates a resource at path (HTTP POST).
func (c *Client) Create(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, path, params)
}

// Set updates the resource at path (HTTP PUT).
func (c *Client) Set(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPut, path, params)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodDelete, path, params)
}

// GetInto reads the resource at path and decodes its data into v.
func (c *Client) GetInto(ctx context.Context, path string, params url.Values, v any) error {
	data, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, params url.Values) (json.RawMessage, error) {
	data, err := c.api.Do(ctx, method, path, params)
	if err != nil {
		var apiErr *pveapi.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			c.security.LogRequest(SubtypeRequestDenied, OutcomeDenied, SeverityWarning, map[string]any{
				"method":          method,
				"path":            path,
				"status":          apiErr.StatusCode,
				"session_expired": c.TicketExpired(),
			})
		}
		return nil, err
	}
	return data, nil
}
