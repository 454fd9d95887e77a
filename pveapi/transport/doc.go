// Package transport provides the HTTPS transport used to reach the Proxmox
// VE API.
//
// The transport layer handles:
//   - HTTPS connections and TLS configuration
//   - Client-side rate limiting
//   - Request/response handling
//
// Authentication is layered on top by wrapping the client's RoundTripper
// with an auth.Authenticator.
package transport
