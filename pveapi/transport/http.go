package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrUnauthorized is returned by CheckStatus when the server responds with
// 401 Unauthorized. An expired session ticket surfaces this way.
var ErrUnauthorized = errors.New("transport: authentication failed (401 Unauthorized)")

const (
	// ContentTypeForm is the content type for request bodies.
	ContentTypeForm = "application/x-www-form-urlencoded"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// defaultBufferSize is the initial size for pooled buffers.
	defaultBufferSize = 16 * 1024

	// maxErrorPreview bounds the response text carried by StatusError.
	maxErrorPreview = 3000
)

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	},
}

// readAllPooled reads r through a pooled buffer and returns a private copy.
func readAllPooled(r io.Reader) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// StatusError is returned by CheckStatus for non-2xx responses other than
// 401.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.StatusCode == http.StatusForbidden {
		return "transport: access denied (403 Forbidden)"
	}
	return fmt.Sprintf("transport: HTTP %d: %s", e.StatusCode, e.Body)
}

// CheckStatus returns nil for 2xx responses, ErrUnauthorized for 401 and a
// *StatusError otherwise.
func CheckStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	preview := string(resp.Body)
	if len(preview) > maxErrorPreview {
		preview = preview[:maxErrorPreview] + "..."
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: preview}
}

// HTTPTransport handles HTTPS communication with the API.
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	insecure bool
	proxyErr error
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// NewHTTPTransport creates a new HTTP transport with the given options.
func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if t.insecure {
		t.logger.Warn("TLS certificate verification disabled")
	}
	if t.proxyErr != nil {
		t.logger.Warn("ignoring invalid proxy URL", "error", t.proxyErr)
	}

	return t
}

// WithLogger sets the logger for configuration warnings. Without it they
// are discarded.
func WithLogger(logger *slog.Logger) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithInsecureSkipVerify configures TLS to skip certificate verification.
// Proxmox VE ships with a self-signed certificate, so this is common in lab
// setups; prefer WithTLSConfig with the cluster CA elsewhere.
func WithInsecureSkipVerify(skip bool) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.insecure = skip
		transport := t.ensureHTTPTransport()
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transport.TLSClientConfig.InsecureSkipVerify = skip
	}
}

// WithTLSConfig sets a custom TLS configuration.
// MinVersion is raised to TLS 1.2 if set lower.
func WithTLSConfig(cfg *tls.Config) HTTPTransportOption {
	return func(t *HTTPTransport) {
		transport := t.ensureHTTPTransport()
		if cfg.MinVersion < tls.VersionTLS12 {
			cfg.MinVersion = tls.VersionTLS12
		}
		transport.TLSClientConfig = cfg
	}
}

// WithProxy sets the proxy used for API requests. An empty string keeps
// the environment proxy settings, "direct" disables proxying.
func WithProxy(proxyURL string) HTTPTransportOption {
	return func(t *HTTPTransport) {
		transport := t.ensureHTTPTransport()
		switch proxyURL {
		case "":
			transport.Proxy = http.ProxyFromEnvironment
		case "direct":
			transport.Proxy = nil
		default:
			u, err := url.Parse(proxyURL)
			if err != nil {
				t.proxyErr = err
				return
			}
			transport.Proxy = http.ProxyURL(u)
		}
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// ensureHTTPTransport ensures the client has an *http.Transport.
func (t *HTTPTransport) ensureHTTPTransport() *http.Transport {
	transport, ok := t.client.Transport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
		t.client.Transport = transport
	}
	return transport
}

// Do sends a request and returns the fully read response. A response is
// returned for every HTTP status; the error is non-nil only when no response
// could be obtained (DNS, connection, TLS, timeout, cancellation).
func (t *HTTPTransport) Do(ctx context.Context, method, rawURL string, header http.Header, body []byte) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transport: rate limit wait: %w", err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", ContentTypeForm)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readAllPooled(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// Client returns the underlying HTTP client for advanced configuration.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// CloseIdleConnections closes any idle connections in the transport.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}
