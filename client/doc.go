// Package client provides a high-level convenience API for the Proxmox VE
// REST API.
//
// This is the recommended entry point for most users. It handles:
//   - Credential normalization and validation
//   - Password login (once, at construction) or stateless token auth
//   - Simple CRUD-style resource access
//
// # Quick Start
//
//	c, err := client.New(ctx, auth.TokenInput{
//	    Hostname:   "pve.example.com",
//	    Username:   "root",
//	    TokenName:  "automation",
//	    TokenValue: os.Getenv("PVE_TOKEN_VALUE"),
//	}, client.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	nodes, err := c.Get(ctx, "/nodes", nil)
//
// # Session Tickets
//
// In password mode the session ticket is obtained once and never refreshed.
// Once it expires (two hours after issue) requests fail with an error
// matching transport.ErrUnauthorized; create a new Client to log in again.
package client
