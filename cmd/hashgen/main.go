package main

import (
	"context"
	"fmt"
	"os"

	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// hashgen creates a password-enabled account. Only council admins use
// password login; everyone else signs in through OTP.
func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <email> <password> <full name>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s admin@council.org mypassword \"Dana Admin\"\n", os.Args[0])
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]
	fullName := os.Args[3]

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	hashStr := string(hash)
	user, err := db.Store().CreateUser(context.Background(), email, fullName, &hashStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully: %s (%s)\n", user.Email, user.ID)
}
