package pveapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smnsjas/go-pve/pveapi/transport"
)

// Doer sends HTTP requests. *transport.HTTPTransport implements it.
type Doer interface {
	Do(ctx context.Context, method, url string, header http.Header, body []byte) (*transport.Response, error)
}

// RequestObserver is notified after every request. status is 0 when no
// response was received.
type RequestObserver interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// ErrInvalidPath is returned for an empty resource path.
var ErrInvalidPath = errors.New("pveapi: resource path is required")

// Client is a low-level Proxmox VE API client.
type Client struct {
	baseURL  string
	doer     Doer
	logger   *slog.Logger
	observer RequestObserver
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver sets a RequestObserver.
func WithObserver(o RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a client for the given /api2 base URL.
func NewClient(baseURL string, doer Doer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get reads a resource. params are sent in the query string.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, params)
}

// Post creates a resource. params are sent as a form body.
func (c *Client) Post(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, params)
}

// Put updates a resource. params are sent as a form body.
func (c *Client) Put(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, params)
}

// Delete removes a resource. params are sent in the query string.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, params)
}

// Do issues a request against path (e.g. "/nodes/pve1/qemu") and returns
// the "data" member of the response envelope.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values) (json.RawMessage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrInvalidPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	reqURL := c.baseURL + "/json" + path
	var body []byte
	header := http.Header{}
	header.Set("Accept", "application/json")

	switch method {
	case http.MethodPost, http.MethodPut:
		body = []byte(params.Encode())
		header.Set("Content-Type", transport.ContentTypeForm)
	default:
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}
	}

	start := time.Now()
	resp, err := c.doer.Do(ctx, method, reqURL, header, body)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(method, 0, elapsed)
		c.debug("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("pveapi: %s %s: %w", method, path, err)
	}
	c.observe(method, resp.StatusCode, elapsed)
	c.debug("request complete", "method", method, "path", path, "status", resp.StatusCode, "elapsed", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(method, path, resp)
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("pveapi: %s %s: decode response: %w", method, path, err)
	}
	return envelope.Data, nil
}

func (c *Client) observe(method string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, elapsed)
	}
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
