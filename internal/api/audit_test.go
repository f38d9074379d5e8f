package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/store"
)

func TestListAuditEventsAsAdmin(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	adminID := uuid.New()
	adminMembershipID := uuid.New()

	f.store.On("GetMembership", mock.Anything, troopID, adminID).
		Return(store.Membership{ID: adminMembershipID, Role: "admin"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, adminMembershipID).
		Return([]store.PrivilegeOverride{}, nil)
	f.store.On("ListAuditEvents", mock.Anything, troopID, int32(50), int32(0)).
		Return([]store.AuditEvent{
			{ID: uuid.New(), ActorID: uuid.New(), TroopID: &troopID, Action: "deny", PrivilegeCode: "view_finances", OccurredAt: time.Now()},
		}, nil)
	f.store.On("CountAuditEvents", mock.Anything, troopID).Return(int64(1), nil)

	path := fmt.Sprintf("/troops/%s/audit", troopID)
	rec := f.doJSON(t, "GET", path, nil, &auth.AuthenticatedUser{ID: adminID})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Data []auditEventResponse `json:"data"`
	}](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "deny", body.Data[0].Action)
}

func TestListAuditEventsLeaderForbidden(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	leaderID := uuid.New()
	leaderMembershipID := uuid.New()
	f.members.joinTroop(troopID, leaderID)

	f.store.On("GetMembership", mock.Anything, troopID, leaderID).
		Return(store.Membership{ID: leaderMembershipID, Role: "troop_leader"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, leaderMembershipID).
		Return([]store.PrivilegeOverride{}, nil)

	path := fmt.Sprintf("/troops/%s/audit", troopID)
	rec := f.doJSON(t, "GET", path, nil, &auth.AuthenticatedUser{ID: leaderID})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.store.AssertNotCalled(t, "ListAuditEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
