package auth_test

import (
	"fmt"
	"log"

	"github.com/smnsjas/go-pve/pveapi/auth"
)

func ExampleCredentials_String() {
	creds, err := auth.Normalize(auth.TokenInput{
		Hostname:   "pve.example.com",
		Username:   "root",
		TokenName:  "automation",
		TokenValue: "00000000-0000-0000-0000-000000000000",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(creds)
	// Output: [Host: pve.example.com:8006], [Username: root@pam], [Token: automation].
}

func ExampleNormalizeAny() {
	_, err := auth.NormalizeAny([]string{"root", "secret"})
	fmt.Println(err)
	// Output: normalize []string: auth: malformed credentials: unsupported credentials type []string
}
