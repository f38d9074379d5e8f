package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/database"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type SeedData struct {
	Organization string      `yaml:"organization"`
	Troops       []SeedTroop `yaml:"troops"`
	Users        []SeedUser  `yaml:"users"`
}

type SeedTroop struct {
	Name string   `yaml:"name"`
	Dens []string `yaml:"dens"`
}

type SeedUser struct {
	Email     string `yaml:"email"`
	FullName  string `yaml:"full_name"`
	Password  string `yaml:"password,omitempty"`
	Troop     string `yaml:"troop"`
	Role      string `yaml:"role"`
	Den       string `yaml:"den,omitempty"`
	Household string `yaml:"household,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	switch os.Args[1] {
	case "seed":
		return seedCommand(os.Args[2:])
	case "nuke":
		return nukeCommand()
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  seeder seed -file seed.yaml   load seed data")
	fmt.Fprintln(os.Stderr, "  seeder nuke                   truncate all tables")
}

func connect() (*database.Database, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "seed.yaml", "path to seed data file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	s := db.Store()

	org, err := s.CreateOrganization(ctx, seed.Organization)
	if err != nil {
		return fmt.Errorf("creating organization: %w", err)
	}

	troops := make(map[string]store.Troop)
	dens := make(map[string]store.Den)
	for _, t := range seed.Troops {
		troop, err := s.CreateTroop(ctx, org.ID, t.Name)
		if err != nil {
			return fmt.Errorf("creating troop %q: %w", t.Name, err)
		}
		troops[t.Name] = troop
		for _, denName := range t.Dens {
			den, err := s.GetOrCreateDen(ctx, troop.ID, denName)
			if err != nil {
				return fmt.Errorf("creating den %q: %w", denName, err)
			}
			dens[t.Name+"/"+denName] = den
		}
	}

	for _, u := range seed.Users {
		if _, ok := privileges.ParseRole(u.Role); !ok {
			return fmt.Errorf("user %s has unknown role %q", u.Email, u.Role)
		}

		var passwordHash *string
		if u.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			h := string(hash)
			passwordHash = &h
		}

		user, err := s.CreateUser(ctx, u.Email, u.FullName, passwordHash)
		if err != nil {
			return fmt.Errorf("creating user %s: %w", u.Email, err)
		}

		troop, ok := troops[u.Troop]
		if !ok {
			return fmt.Errorf("user %s references unknown troop %q", u.Email, u.Troop)
		}

		var denID *uuid.UUID
		if u.Den != "" {
			den, ok := dens[u.Troop+"/"+u.Den]
			if !ok {
				return fmt.Errorf("user %s references unknown den %q", u.Email, u.Den)
			}
			denID = &den.ID
		}

		if _, err := s.UpsertMembership(ctx, troop.ID, user.ID, u.Role, denID); err != nil {
			return fmt.Errorf("creating membership for %s: %w", u.Email, err)
		}

		if u.Household != "" {
			household, err := s.GetOrCreateHousehold(ctx, u.Household)
			if err != nil {
				return err
			}
			if err := s.AddHouseholdMember(ctx, household.ID, user.ID); err != nil {
				return err
			}
		}

		log.Printf("Seeded %s as %s in %s", u.Email, u.Role, u.Troop)
	}

	log.Printf("Seed complete: %d troops, %d users", len(seed.Troops), len(seed.Users))
	return nil
}

func nukeCommand() error {
	db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	tables := []string{
		"audit_events",
		"sales",
		"privilege_overrides",
		"memberships",
		"household_members",
		"households",
		"dens",
		"users",
		"troops",
		"organizations",
	}
	ctx := context.Background()
	for _, table := range tables {
		if _, err := db.Pool().Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("truncating %s: %w", table, err)
		}
	}

	log.Println("All tables truncated")
	return nil
}
