// Package auth resolves caller-supplied credentials and authenticates
// requests against the Proxmox VE API.
//
// # Supported Authentication Methods
//
//   - Token: a pre-issued API token sent on every request as
//     "Authorization: PVEAPIToken=user@realm!name=value". No login exchange.
//   - Password: a username/password login against /access/ticket that yields
//     a short-lived session ticket and CSRF prevention token.
//
// # Credential Sources
//
// Credentials are built from anything implementing CredentialSource. The
// explicit TokenInput and PasswordInput types select the method at compile
// time; Map and FromStruct adapt loosely shaped data, in which case the
// method is chosen by the presence of a tokenName or tokenValue key.
//
// # Usage
//
// Token authentication:
//
//	creds, err := auth.Normalize(auth.TokenInput{
//	    Hostname:   "pve.example.com",
//	    Username:   "root",
//	    TokenName:  "automation",
//	    TokenValue: "00000000-0000-0000-0000-000000000000",
//	})
//	a, _ := auth.NewTokenAuth(creds)
//
// Password authentication:
//
//	creds, err := auth.Normalize(auth.PasswordInput{
//	    Hostname: "pve.example.com",
//	    Username: "root",
//	    Password: "secret",
//	})
//	ticket, err := auth.Login(ctx, creds, tr)
//	a := auth.NewTicketAuth(ticket)
package auth
