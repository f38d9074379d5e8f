package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) CreateUser(ctx context.Context, email, fullName string, passwordHash *string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, full_name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, full_name, password_hash, created_at`,
		email, fullName, passwordHash,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// GetOrCreateUserByEmail inserts the user if the email is new, otherwise
// returns the existing row unchanged. Used by the roster importer, which
// must be re-runnable.
func (s *Store) GetOrCreateUserByEmail(ctx context.Context, email, fullName string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, full_name)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, email, full_name, password_hash, created_at`,
		email, fullName,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("get-or-create user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, full_name, password_hash, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, full_name, password_hash, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("getting user by id: %w", err)
	}
	return u, nil
}

func (s *Store) GetOrCreateHousehold(ctx context.Context, name string) (Household, error) {
	var h Household
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM households WHERE name = $1`,
		name,
	).Scan(&h.ID, &h.Name, &h.CreatedAt)
	if err == nil {
		return h, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO households (name) VALUES ($1)
		 RETURNING id, name, created_at`,
		name,
	).Scan(&h.ID, &h.Name, &h.CreatedAt)
	if err != nil {
		return Household{}, fmt.Errorf("creating household: %w", err)
	}
	return h, nil
}

func (s *Store) AddHouseholdMember(ctx context.Context, householdID, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO household_members (household_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("adding household member: %w", err)
	}
	return nil
}
