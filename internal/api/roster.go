package api

import (
	"errors"
	"net/http"

	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/roster"
)

const maxRosterSize = 5 * 1024 * 1024 // 5MB

// ImportRoster ingests a council roster CSV uploaded as a multipart file
// under the "roster" field.
func (s *Server) ImportRoster(w http.ResponseWriter, r *http.Request) {
	troopID, err := parseUUIDParam(r, "troopID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid troop ID", nil))
		return
	}

	ctx := r.Context()
	user, ok := auth.GetAuthenticatedUser(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("authentication required"))
		return
	}
	decision, _, err := s.authorize(ctx, troopID, privileges.LevelLeader, privileges.ImportRoster, user.ID)
	if err != nil {
		s.logError(r, "authorize failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	if !decision.Allowed() {
		writeDecision(w, decision)
		return
	}

	if err := r.ParseMultipartForm(maxRosterSize); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid multipart upload", nil))
		return
	}
	file, _, err := r.FormFile("roster")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Missing roster file", []ErrorDetail{
			{Field: "roster", Message: "file is required"},
		}))
		return
	}
	defer file.Close()

	summary, err := s.roster.Import(ctx, troopID, file)
	if err != nil {
		if errors.Is(err, roster.ErrEmptyRoster) {
			writeError(w, http.StatusBadRequest, ValidationErr("Roster file has no data rows", nil))
			return
		}
		// Header mismatches and unreadable CSV land here.
		writeError(w, http.StatusBadRequest, ValidationErr(err.Error(), nil))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
