package api

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/troopvault/tv-backend/internal/qr"
	"github.com/troopvault/tv-backend/internal/roster"
	"github.com/troopvault/tv-backend/internal/store"
)

// DataStore defines the database operations the handlers use.
type DataStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (store.User, error)
	GetTroop(ctx context.Context, id uuid.UUID) (store.Troop, error)
	ListTroops(ctx context.Context) ([]store.Troop, error)
	ListDens(ctx context.Context, troopID uuid.UUID) ([]store.Den, error)
	GetMembership(ctx context.Context, troopID, userID uuid.UUID) (store.Membership, error)
	ListTroopMembers(ctx context.Context, troopID uuid.UUID, limit, offset int32) ([]store.Member, error)
	CountTroopMembers(ctx context.Context, troopID uuid.UUID) (int64, error)
	ListOverridesForMembership(ctx context.Context, membershipID uuid.UUID) ([]store.PrivilegeOverride, error)
	UpsertOverride(ctx context.Context, membershipID uuid.UUID, privilegeCode, scope string, createdBy uuid.UUID) (store.PrivilegeOverride, error)
	DeleteOverride(ctx context.Context, membershipID uuid.UUID, privilegeCode string) error
	InsertSale(ctx context.Context, sale store.Sale) (store.Sale, error)
	ListSalesByScout(ctx context.Context, scoutID uuid.UUID, limit, offset int32) ([]store.Sale, error)
	CountSalesByScout(ctx context.Context, scoutID uuid.UUID) (int64, error)
	ListAuditEvents(ctx context.Context, troopID uuid.UUID, limit, offset int32) ([]store.AuditEvent, error)
	CountAuditEvents(ctx context.Context, troopID uuid.UUID) (int64, error)
}

// AuthService defines the login and token operations.
type AuthService interface {
	LoginPassword(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RequestOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

// TaskEnqueuer hands work to the background queue.
type TaskEnqueuer interface {
	Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error)
}

// PaymentLinker produces payment-link QR images.
type PaymentLinker interface {
	GeneratePaymentLink(ctx context.Context, troopID, scoutID uuid.UUID, amountCents int) (*qr.PaymentLink, error)
}

// RosterImporter ingests council roster CSV exports.
type RosterImporter interface {
	Import(ctx context.Context, troopID uuid.UUID, r io.Reader) (*roster.Summary, error)
}
