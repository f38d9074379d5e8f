package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/troopvault/tv-backend/internal/qr"
	"github.com/troopvault/tv-backend/internal/roster"
	"github.com/troopvault/tv-backend/internal/store"
)

// MockDataStore is a testify mock of the handlers' database interface.
type MockDataStore struct {
	mock.Mock
}

func NewMockDataStore(t *testing.T) *MockDataStore {
	m := &MockDataStore{}
	m.Test(t)
	return m
}

func (m *MockDataStore) GetUserByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(store.User), args.Error(1)
}

func (m *MockDataStore) GetTroop(ctx context.Context, id uuid.UUID) (store.Troop, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(store.Troop), args.Error(1)
}

func (m *MockDataStore) ListTroops(ctx context.Context) ([]store.Troop, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Troop), args.Error(1)
}

func (m *MockDataStore) ListDens(ctx context.Context, troopID uuid.UUID) ([]store.Den, error) {
	args := m.Called(ctx, troopID)
	return args.Get(0).([]store.Den), args.Error(1)
}

func (m *MockDataStore) GetMembership(ctx context.Context, troopID, userID uuid.UUID) (store.Membership, error) {
	args := m.Called(ctx, troopID, userID)
	return args.Get(0).(store.Membership), args.Error(1)
}

func (m *MockDataStore) ListTroopMembers(ctx context.Context, troopID uuid.UUID, limit, offset int32) ([]store.Member, error) {
	args := m.Called(ctx, troopID, limit, offset)
	return args.Get(0).([]store.Member), args.Error(1)
}

func (m *MockDataStore) CountTroopMembers(ctx context.Context, troopID uuid.UUID) (int64, error) {
	args := m.Called(ctx, troopID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataStore) ListOverridesForMembership(ctx context.Context, membershipID uuid.UUID) ([]store.PrivilegeOverride, error) {
	args := m.Called(ctx, membershipID)
	return args.Get(0).([]store.PrivilegeOverride), args.Error(1)
}

func (m *MockDataStore) UpsertOverride(ctx context.Context, membershipID uuid.UUID, privilegeCode, scope string, createdBy uuid.UUID) (store.PrivilegeOverride, error) {
	args := m.Called(ctx, membershipID, privilegeCode, scope, createdBy)
	return args.Get(0).(store.PrivilegeOverride), args.Error(1)
}

func (m *MockDataStore) DeleteOverride(ctx context.Context, membershipID uuid.UUID, privilegeCode string) error {
	args := m.Called(ctx, membershipID, privilegeCode)
	return args.Error(0)
}

func (m *MockDataStore) InsertSale(ctx context.Context, sale store.Sale) (store.Sale, error) {
	args := m.Called(ctx, sale)
	return args.Get(0).(store.Sale), args.Error(1)
}

func (m *MockDataStore) ListSalesByScout(ctx context.Context, scoutID uuid.UUID, limit, offset int32) ([]store.Sale, error) {
	args := m.Called(ctx, scoutID, limit, offset)
	return args.Get(0).([]store.Sale), args.Error(1)
}

func (m *MockDataStore) CountSalesByScout(ctx context.Context, scoutID uuid.UUID) (int64, error) {
	args := m.Called(ctx, scoutID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataStore) ListAuditEvents(ctx context.Context, troopID uuid.UUID, limit, offset int32) ([]store.AuditEvent, error) {
	args := m.Called(ctx, troopID, limit, offset)
	return args.Get(0).([]store.AuditEvent), args.Error(1)
}

func (m *MockDataStore) CountAuditEvents(ctx context.Context, troopID uuid.UUID) (int64, error) {
	args := m.Called(ctx, troopID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthService mocks the login and token operations.
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService(t *testing.T) *MockAuthService {
	m := &MockAuthService{}
	m.Test(t)
	return m
}

func (m *MockAuthService) LoginPassword(ctx context.Context, email, password string) (string, string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) RequestOTP(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (string, string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// MockTaskEnqueuer mocks the background queue client.
type MockTaskEnqueuer struct {
	mock.Mock
}

func NewMockTaskEnqueuer(t *testing.T) *MockTaskEnqueuer {
	m := &MockTaskEnqueuer{}
	m.Test(t)
	return m
}

func (m *MockTaskEnqueuer) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	args := m.Called(taskType, data)
	var info *asynq.TaskInfo
	if v := args.Get(0); v != nil {
		info = v.(*asynq.TaskInfo)
	}
	return info, args.Error(1)
}

// MockPaymentLinker mocks QR payment link generation.
type MockPaymentLinker struct {
	mock.Mock
}

func NewMockPaymentLinker(t *testing.T) *MockPaymentLinker {
	m := &MockPaymentLinker{}
	m.Test(t)
	return m
}

func (m *MockPaymentLinker) GeneratePaymentLink(ctx context.Context, troopID, scoutID uuid.UUID, amountCents int) (*qr.PaymentLink, error) {
	args := m.Called(ctx, troopID, scoutID, amountCents)
	var link *qr.PaymentLink
	if v := args.Get(0); v != nil {
		link = v.(*qr.PaymentLink)
	}
	return link, args.Error(1)
}

// MockRosterImporter mocks CSV roster ingestion.
type MockRosterImporter struct {
	mock.Mock
}

func NewMockRosterImporter(t *testing.T) *MockRosterImporter {
	m := &MockRosterImporter{}
	m.Test(t)
	return m
}

func (m *MockRosterImporter) Import(ctx context.Context, troopID uuid.UUID, r io.Reader) (*roster.Summary, error) {
	args := m.Called(ctx, troopID, r)
	var summary *roster.Summary
	if v := args.Get(0); v != nil {
		summary = v.(*roster.Summary)
	}
	return summary, args.Error(1)
}
