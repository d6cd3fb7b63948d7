// Command admin-token mints an HS256 access token for the admin API.
//
// The token is printed to stdout so it can be exported straight into a
// shell variable:
//
//	export TOKEN=$(go run ./cmd/admin-token -ttl 24h)
//	curl -H "Authorization: Bearer $TOKEN" localhost:8080/admin/generations
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	var (
		subject = flag.String("sub", "", "Token subject, a UUID (default: random)")
		roles   = flag.String("roles", "admin", "Comma-separated role list")
		ttl     = flag.Duration("ttl", time.Hour, "Token lifetime")
	)
	flag.Parse()

	_ = godotenv.Load()

	secret := strings.TrimSpace(os.Getenv("JWT_ACCESS_SECRET"))
	if secret == "" {
		fmt.Fprintln(os.Stderr, "error: JWT_ACCESS_SECRET is not set")
		os.Exit(2)
	}

	sub := *subject
	if sub == "" {
		sub = uuid.New().String()
	} else if _, err := uuid.Parse(sub); err != nil {
		fmt.Fprintf(os.Stderr, "error: -sub must be a UUID: %v\n", err)
		os.Exit(2)
	}

	if *ttl <= 0 {
		fmt.Fprintln(os.Stderr, "error: -ttl must be positive")
		os.Exit(2)
	}

	roleList := make([]string, 0)
	for _, role := range strings.Split(*roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roleList = append(roleList, role)
		}
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"type":  "access",
		"roles": roleList,
		"iat":   now.Unix(),
		"exp":   now.Add(*ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
