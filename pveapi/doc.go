// Package pveapi provides a low-level client for the Proxmox VE REST API.
//
// A Client issues JSON requests against an /api2 base URL over a
// transport.HTTPTransport and unwraps the {"data": ...} envelope the API
// returns. Authentication is applied by wrapping the transport's
// RoundTripper with an auth.Authenticator; see the auth sub-package.
package pveapi
