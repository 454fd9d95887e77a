package client_test

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/smnsjas/go-pve/client"
	"github.com/smnsjas/go-pve/pveapi/auth"
)

// Example_token demonstrates stateless API token authentication.
func Example_token() {
	ctx := context.Background()

	c, err := client.New(ctx, auth.TokenInput{
		Hostname:   "pve.example.com",
		Username:   "root",
		TokenName:  "automation",
		TokenValue: os.Getenv("PVE_TOKEN_VALUE"),
	}, client.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	nodes, err := c.Get(ctx, "/nodes", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(nodes))
}

// Example_password demonstrates a password login followed by a write.
func Example_password() {
	ctx := context.Background()

	c, err := client.New(ctx, auth.PasswordInput{
		Hostname: "pve.example.com",
		Username: "root",
		Password: os.Getenv("PVE_PASSWORD"),
	}, client.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	upid, err := c.Create(ctx, "/nodes/pve1/qemu/100/status/start", url.Values{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(upid))
}
