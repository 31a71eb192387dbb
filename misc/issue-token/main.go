package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"franchise-crm/internal/middleware"
	"franchise-crm/internal/models"

	"github.com/spf13/pflag"
)

func main() {
	user := pflag.String("user", "local-dev", "user id (JWT subject)")
	franchise := pflag.String("franchise", "", "franchise id")
	role := pflag.String("role", models.RoleStaff, "super_admin | franchise_admin | staff | readonly")
	ttl := pflag.Duration("ttl", 24*time.Hour, "token lifetime")
	pflag.Parse()

	// The secret comes from the same variable the server reads.
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("Usage: JWT_SECRET=... go run ./misc/issue-token --franchise <id> --role <role>")
	}
	if *franchise == "" && *role != models.RoleSuperAdmin {
		log.Fatalf("--franchise is required for role %s", *role)
	}

	token, err := middleware.IssueToken(secret, models.Principal{
		UserID:      *user,
		FranchiseID: *franchise,
		Role:        *role,
	}, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	// Print the token so it can be pasted into an Authorization header.
	fmt.Println(token)
}
