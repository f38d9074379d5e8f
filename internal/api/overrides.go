package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/troopvault/tv-backend/internal/privileges"
)

type putOverrideRequest struct {
	Scope string `json:"scope" validate:"required"`
}

type overrideResponse struct {
	UserID        string `json:"user_id"`
	PrivilegeCode string `json:"privilege_code"`
	Scope         string `json:"scope"`
}

// PutOverride sets or replaces one member's override for one privilege.
func (s *Server) PutOverride(w http.ResponseWriter, r *http.Request) {
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

	code := chi.URLParam(r, "code")
	if !privileges.Known(code) {
		writeError(w, http.StatusNotFound, NotFound("Privilege"))
		return
	}

	var req putOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}
	scope, err := privileges.ParseScope(req.Scope)
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid scope", []ErrorDetail{
			{Field: "scope", Message: err.Error()},
		}))
		return
	}

	ctx := r.Context()
	decision, actor, err := s.authorize(ctx, troopID, privileges.LevelLeader, privileges.ManageOverrides, targetUserID)
	if err != nil {
		s.logError(r, "authorize failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	if !decision.Allowed() {
		writeDecision(w, decision)
		return
	}

	targetMembership, err := s.store.GetMembership(ctx, troopID, targetUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, NotFound("Membership"))
		return
	}
	if err != nil {
		s.logError(r, "membership lookup failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	row, err := s.store.UpsertOverride(ctx, targetMembership.ID, code, scope.String(), actor.User.ID)
	if err != nil {
		s.logError(r, "override upsert failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, overrideResponse{
		UserID:        targetUserID.String(),
		PrivilegeCode: row.PrivilegeCode,
		Scope:         row.Scope,
	})
}

// DeleteOverride removes an override, restoring the role default.
func (s *Server) DeleteOverride(w http.ResponseWriter, r *http.Request) {
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
	code := chi.URLParam(r, "code")

	ctx := r.Context()
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

	targetMembership, err := s.store.GetMembership(ctx, troopID, targetUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, NotFound("Membership"))
		return
	}
	if err != nil {
		s.logError(r, "membership lookup failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	if err := s.store.DeleteOverride(ctx, targetMembership.ID, code); err != nil {
		s.logError(r, "override delete failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
