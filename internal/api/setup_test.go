package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/testutil"
)

// fakeMembers is an in-memory MembershipView for gate checks. Den and troop
// linkage is tracked per troop, matching the store's scoping.
type fakeMembers struct {
	households map[uuid.UUID]uuid.UUID               // user -> household
	dens       map[uuid.UUID]map[uuid.UUID]uuid.UUID // troop -> user -> den
	troops     map[uuid.UUID]map[uuid.UUID]bool      // troop -> members
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{
		households: make(map[uuid.UUID]uuid.UUID),
		dens:       make(map[uuid.UUID]map[uuid.UUID]uuid.UUID),
		troops:     make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (f *fakeMembers) joinTroop(troopID, userID uuid.UUID) {
	if f.troops[troopID] == nil {
		f.troops[troopID] = make(map[uuid.UUID]bool)
	}
	f.troops[troopID][userID] = true
}

func (f *fakeMembers) joinDen(troopID, denID, userID uuid.UUID) {
	f.joinTroop(troopID, userID)
	if f.dens[troopID] == nil {
		f.dens[troopID] = make(map[uuid.UUID]uuid.UUID)
	}
	f.dens[troopID][userID] = denID
}

func (f *fakeMembers) SameHousehold(_ context.Context, a, b uuid.UUID) (bool, error) {
	return a == b || (f.households[a] != uuid.Nil && f.households[a] == f.households[b]), nil
}

func (f *fakeMembers) SameDen(_ context.Context, troopID, a, b uuid.UUID) (bool, error) {
	if a == b {
		return true, nil
	}
	da, db := f.dens[troopID][a], f.dens[troopID][b]
	return da != uuid.Nil && da == db, nil
}

func (f *fakeMembers) SameTroop(_ context.Context, troopID, a, b uuid.UUID) (bool, error) {
	return a == b || (f.troops[troopID][a] && f.troops[troopID][b]), nil
}

type fixture struct {
	store    *testutil.MockDataStore
	authSvc  *testutil.MockAuthService
	queue    *testutil.MockTaskEnqueuer
	payments *testutil.MockPaymentLinker
	roster   *testutil.MockRosterImporter
	members  *fakeMembers
	router   chi.Router
}

func newFixture(t *testing.T) *fixture {
	defaults, err := privileges.NewRoleDefaults()
	require.NoError(t, err)

	f := &fixture{
		store:    testutil.NewMockDataStore(t),
		authSvc:  testutil.NewMockAuthService(t),
		queue:    testutil.NewMockTaskEnqueuer(t),
		payments: testutil.NewMockPaymentLinker(t),
		roster:   testutil.NewMockRosterImporter(t),
		members:  newFakeMembers(),
	}

	resolver := privileges.NewResolver(defaults)
	gate := privileges.NewGate(resolver, f.members, privileges.NopRecorder{})

	server := NewServer(f.store, f.authSvc, gate, resolver, f.queue, f.payments, f.roster)
	f.router = server.Routes()
	return f
}

// doJSON performs a request with a JSON body, optionally authenticated.
func (f *fixture) doJSON(t *testing.T, method, path string, body interface{}, user *auth.AuthenticatedUser) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(auth.WithAuthenticatedUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[ErrorResponse](t, rec).Error.Code
}
