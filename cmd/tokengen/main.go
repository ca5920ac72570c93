// Command tokengen выпускает Bearer-токен для обращения к шлюзу.
//
//	tokengen -u alice -k secret -ttl 1h
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
)

const defaultTTL = 24 * time.Hour

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("Error generating token: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	secret := config.DefaultSecretKey
	if v, ok := os.LookupEnv("SECRET_KEY"); ok && v != "" {
		secret = v
	}

	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	userID := fs.String("u", "", "user id, random UUID if empty")
	secretKey := fs.String("k", secret, "JWT signing key")
	ttl := fs.Duration("ttl", defaultTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %s", *ttl)
	}
	if *userID == "" {
		*userID = middleware.GenerateUserID()
	}

	token, err := middleware.CreateToken(*userID, *secretKey, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "user: %s\nAuthorization: Bearer %s\n", *userID, token)
	return err
}
