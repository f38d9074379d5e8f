package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/roster"
	"github.com/troopvault/tv-backend/internal/store"
)

func rosterUpload(t *testing.T, path string, csv string, user *auth.AuthenticatedUser, router http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("roster", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if user != nil {
		req = req.WithContext(auth.WithAuthenticatedUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestImportRosterAsLeader(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	leaderID := uuid.New()
	leaderMembershipID := uuid.New()
	f.members.joinTroop(troopID, leaderID)

	f.store.On("GetMembership", mock.Anything, troopID, leaderID).
		Return(store.Membership{ID: leaderMembershipID, Role: "troop_leader"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, leaderMembershipID).
		Return([]store.PrivilegeOverride{}, nil)
	f.roster.On("Import", mock.Anything, troopID, mock.Anything).
		Return(&roster.Summary{Imported: 12, Skipped: 1}, nil)

	path := fmt.Sprintf("/troops/%s/roster/import", troopID)
	csv := "scout_name,scout_email,parent_name,parent_email,den\nA,a@example.com,B,b@example.com,Juniors\n"
	rec := rosterUpload(t, path, csv, &auth.AuthenticatedUser{ID: leaderID}, f.router)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[roster.Summary](t, rec)
	assert.Equal(t, 12, body.Imported)
	assert.Equal(t, 1, body.Skipped)
}

func TestImportRosterByParentForbidden(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	parentID := uuid.New()
	parentMembershipID := uuid.New()
	f.members.joinTroop(troopID, parentID)

	f.store.On("GetMembership", mock.Anything, troopID, parentID).
		Return(store.Membership{ID: parentMembershipID, Role: "parent"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, parentMembershipID).
		Return([]store.PrivilegeOverride{}, nil)

	path := fmt.Sprintf("/troops/%s/roster/import", troopID)
	rec := rosterUpload(t, path, "x", &auth.AuthenticatedUser{ID: parentID}, f.router)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.roster.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportRosterMissingFile(t *testing.T) {
	f := newFixture(t)
	troopID := uuid.New()
	leaderID := uuid.New()
	leaderMembershipID := uuid.New()
	f.members.joinTroop(troopID, leaderID)

	f.store.On("GetMembership", mock.Anything, troopID, leaderID).
		Return(store.Membership{ID: leaderMembershipID, Role: "troop_leader"}, nil)
	f.store.On("ListOverridesForMembership", mock.Anything, leaderMembershipID).
		Return([]store.PrivilegeOverride{}, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	path := fmt.Sprintf("/troops/%s/roster/import", troopID)
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(auth.WithAuthenticatedUser(req.Context(), &auth.AuthenticatedUser{ID: leaderID}))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
