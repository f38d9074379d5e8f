package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/store"
)

func TestGetCatalogIsPublic(t *testing.T) {
	f := newFixture(t)

	rec := f.doJSON(t, "GET", "/privileges", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Privileges []privileges.PrivilegeDefinition `json:"privileges"`
	}](t, rec)
	assert.Len(t, body.Privileges, len(privileges.Catalog()))
}

func TestGetEffectivePrivilegesSelf(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	userID := uuid.New()
	membershipID := uuid.New()

	f.store.On("GetMembership", mock.Anything, troopID, userID).
		Return(store.Membership{ID: membershipID, TroopID: troopID, UserID: userID, Role: "parent"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, membershipID).
		Return([]store.PrivilegeOverride{
			{MembershipID: membershipID, PrivilegeCode: privileges.ViewFinances, Scope: "troop"},
		}, nil)

	path := fmt.Sprintf("/troops/%s/members/%s/privileges", troopID, userID)
	rec := f.doJSON(t, "GET", path, nil, &auth.AuthenticatedUser{ID: userID, Email: "parent@example.com"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Role       string                          `json:"role"`
		Privileges []privileges.EffectivePrivilege `json:"privileges"`
	}](t, rec)
	assert.Equal(t, "parent", body.Role)
	require.Len(t, body.Privileges, len(privileges.Catalog()))

	var finances privileges.EffectivePrivilege
	for _, p := range body.Privileges {
		if p.Code == privileges.ViewFinances {
			finances = p
		}
	}
	assert.True(t, finances.HasOverride)
	assert.Equal(t, privileges.ScopeTroop, finances.EffectiveScope)
}

func TestGetEffectivePrivilegesRequiresAuth(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/troops/%s/members/%s/privileges", uuid.New(), uuid.New())

	rec := f.doJSON(t, "GET", path, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeAuthRequired, errorCode(t, rec))
}

func TestGetEffectivePrivilegesOtherMemberForbidden(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	actorID := uuid.New()
	targetID := uuid.New()
	actorMembershipID := uuid.New()

	f.members.joinTroop(troopID, actorID)
	f.members.joinTroop(troopID, targetID)

	// The actor is an ordinary member: level 1, so ManageOverrides fails
	// the role-level check before scope is even considered.
	f.store.On("GetMembership", mock.Anything, troopID, actorID).
		Return(store.Membership{ID: actorMembershipID, Role: "member"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, actorMembershipID).
		Return([]store.PrivilegeOverride{}, nil)

	path := fmt.Sprintf("/troops/%s/members/%s/privileges", troopID, targetID)
	rec := f.doJSON(t, "GET", path, nil, &auth.AuthenticatedUser{ID: actorID})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, CodePermissionDenied, errorCode(t, rec))
}

func TestGetEffectivePrivilegesAsLeader(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	leaderID := uuid.New()
	targetID := uuid.New()
	leaderMembershipID := uuid.New()
	targetMembershipID := uuid.New()

	f.members.joinTroop(troopID, leaderID)
	f.members.joinTroop(troopID, targetID)

	f.store.On("GetMembership", mock.Anything, troopID, leaderID).
		Return(store.Membership{ID: leaderMembershipID, Role: "troop_leader"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, leaderMembershipID).
		Return([]store.PrivilegeOverride{}, nil)
	f.store.On("GetMembership", mock.Anything, troopID, targetID).
		Return(store.Membership{ID: targetMembershipID, Role: "member"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, targetMembershipID).
		Return([]store.PrivilegeOverride{}, nil)

	path := fmt.Sprintf("/troops/%s/members/%s/privileges", troopID, targetID)
	rec := f.doJSON(t, "GET", path, nil, &auth.AuthenticatedUser{ID: leaderID})

	assert.Equal(t, http.StatusOK, rec.Code)
}
