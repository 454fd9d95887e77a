// Package pve is a client for the Proxmox VE HTTP API.
//
// It turns loosely shaped credential input into a validated record,
// authenticates with either an API token or a password login, and
// decorates every outgoing request with the matching credentials.
//
// # Architecture
//
// The library is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  client/             High-level session API             │
//	├─────────────────────────────────────────────────────────┤
//	│  pveapi/             JSON envelope, paths, API errors   │
//	├─────────────────────────────────────────────────────────┤
//	│  pveapi/auth/        Credentials, login, authenticators │
//	├─────────────────────────────────────────────────────────┤
//	│  pveapi/transport/   HTTPS, TLS, proxy, rate limiting   │
//	└─────────────────────────────────────────────────────────┘
//
// # Quick Start
//
//	c, err := client.New(ctx, auth.TokenInput{
//	    Hostname:   "pve1.example.com",
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
// Password credentials log in once when the client is created. The
// resulting session ticket is kept for the client's lifetime and is not
// refreshed; create a new client once it expires.
package pve
