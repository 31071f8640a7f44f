// cmd/devtoken/main.go mints an access token for local testing, signed with
// the configured JWT secret the way the identity service would sign it.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/your-org/marketplace-core/internal/config"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
)

func main() {
	id := flag.String("id", "", "user id (defaults to a random uuid)")
	email := flag.String("email", "customer@example.com", "user email")
	roles := flag.String("roles", auth.RoleCustomer, "comma separated roles")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	userID := uuid.New()
	if *id != "" {
		if userID, err = uuid.Parse(*id); err != nil {
			log.Fatalf("Invalid user id: %v", err)
		}
	}

	principal := auth.NewPrincipal(userID, *email, strings.Split(*roles, ",")...)
	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(principal)
	if err != nil {
		log.Fatal("Error generating token:", err)
	}

	fmt.Printf("User: %s <%s> %v\n", principal.ID, principal.Email, principal.Roles)
	fmt.Printf("Token: %s\n", token)
}
