// Package store is the hand-written pgx query layer. Method names follow
// the one-query-one-method convention so callers read like a generated
// queries object.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash *string
	CreatedAt    time.Time
}

type Organization struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Troop struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	CreatedAt      time.Time
}

type Den struct {
	ID      uuid.UUID
	TroopID uuid.UUID
	Name    string
}

type Household struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Membership struct {
	ID        uuid.UUID
	TroopID   uuid.UUID
	UserID    uuid.UUID
	DenID     *uuid.UUID
	Role      string
	CreatedAt time.Time
}

// Member is a membership row joined with its user, for roster listings.
type Member struct {
	Membership
	Email    string
	FullName string
}

type PrivilegeOverride struct {
	ID            uuid.UUID
	MembershipID  uuid.UUID
	PrivilegeCode string
	Scope         string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

type AuditEvent struct {
	ID            uuid.UUID
	ActorID       uuid.UUID
	TroopID       *uuid.UUID
	Action        string
	PrivilegeCode string
	RequiredLevel int
	ActualScope   string
	TargetOwnerID *uuid.UUID
	OccurredAt    time.Time
	CreatedAt     time.Time
}

type Sale struct {
	ID          uuid.UUID
	TroopID     uuid.UUID
	ScoutID     uuid.UUID
	RecordedBy  uuid.UUID
	Item        string
	Boxes       int
	AmountCents int64
	RecordedAt  time.Time
}
