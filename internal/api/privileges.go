package api

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/privileges"
)

// GetCatalog returns the full privilege catalog. The catalog is public:
// it names no member and carries no scope decisions.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"privileges": privileges.Catalog(),
	})
}

// GetEffectivePrivileges returns the override-aware privilege list for one
// member. Members may view their own; changing or viewing someone else's
// requires override management rights over that member.
func (s *Server) GetEffectivePrivileges(w http.ResponseWriter, r *http.Request) {
	troopID, err := parseUUIDParam(r, "troopID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid troop ID", nil))
		return
	}
	targetUserID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid user ID", nil))
		return
	}

	ctx := r.Context()
	actor, ok := auth.GetAuthenticatedUser(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("authentication required"))
		return
	}

	if actor.ID != targetUserID {
		decision, _, err := s.authorize(ctx, troopID, privileges.LevelLeader, privileges.ManageOverrides, targetUserID)
		if err != nil {
			s.logError(r, "authorize failed", err)
			writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
			return
		}
		if !decision.Allowed() {
			writeDecision(w, decision)
			return
		}
	}

	membership, err := s.store.GetMembership(ctx, troopID, targetUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, NotFound("Membership"))
		return
	}
	if err != nil {
		s.logError(r, "membership lookup failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	rows, err := s.store.ListOverridesForMembership(ctx, membership.ID)
	if err != nil {
		s.logError(r, "override lookup failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	resolved, err := s.resolver.Resolve(ctx, privileges.UnitRole(membership.Role), toEngineOverrides(targetUserID, rows))
	if err != nil {
		// Strict override policy rejected a stale row.
		s.logError(r, "privilege resolution failed", err)
		writeError(w, http.StatusConflict, Conflict("Member has invalid privilege overrides"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    targetUserID,
		"role":       membership.Role,
		"privileges": resolved,
	})
}
