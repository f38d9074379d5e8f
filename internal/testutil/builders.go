package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/store"
)

// TestTroop is a seeded troop with its organization.
type TestTroop struct {
	Organization store.Organization
	Troop        store.Troop
}

// SeedTroop creates an organization with one troop.
func SeedTroop(t *testing.T, s *store.Store, name string) TestTroop {
	t.Helper()
	ctx := context.Background()

	org, err := s.CreateOrganization(ctx, name+" Council")
	require.NoError(t, err)
	troop, err := s.CreateTroop(ctx, org.ID, name)
	require.NoError(t, err)

	return TestTroop{Organization: org, Troop: troop}
}

// SeedMember creates a user and gives them a membership in the troop with
// the given role, optionally placed in a den.
func SeedMember(t *testing.T, s *store.Store, troopID uuid.UUID, role string, denID *uuid.UUID) store.User {
	t.Helper()
	ctx := context.Background()

	email := fmt.Sprintf("%s-%s@example.com", role, uuid.New().String()[:8])
	user, err := s.CreateUser(ctx, email, "Test "+role, nil)
	require.NoError(t, err)

	_, err = s.UpsertMembership(ctx, troopID, user.ID, role, denID)
	require.NoError(t, err)

	return user
}

// SeedHousehold links the given users into one household.
func SeedHousehold(t *testing.T, s *store.Store, name string, userIDs ...uuid.UUID) store.Household {
	t.Helper()
	ctx := context.Background()

	household, err := s.GetOrCreateHousehold(ctx, name)
	require.NoError(t, err)
	for _, id := range userIDs {
		require.NoError(t, s.AddHouseholdMember(ctx, household.ID, id))
	}
	return household
}

// SeedDen creates a den in the troop.
func SeedDen(t *testing.T, s *store.Store, troopID uuid.UUID, name string) store.Den {
	t.Helper()

	den, err := s.GetOrCreateDen(context.Background(), troopID, name)
	require.NoError(t, err)
	return den
}
