package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/privileges"
)

type memberResponse struct {
	UserID   uuid.UUID  `json:"user_id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     string     `json:"role"`
	DenID    *uuid.UUID `json:"den_id,omitempty"`
	JoinedAt time.Time  `json:"joined_at"`
}

// ListMembers returns the troop roster. Leaders and up only.
func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	troopID, err := parseUUIDParam(r, "troopID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid troop ID", nil))
		return
	}

	ctx := r.Context()
	// Troop-wide listing: the actor is their own scope target, so the
	// check reduces to role level plus a troop-scoped privilege.
	user, ok := auth.GetAuthenticatedUser(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("authentication required"))
		return
	}
	decision, _, err := s.authorize(ctx, troopID, privileges.LevelLeader, privileges.ManageMembers, user.ID)
	if err != nil {
		s.logError(r, "authorize failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	if !decision.Allowed() {
		writeDecision(w, decision)
		return
	}

	limit, offset := parsePagination(r)

	members, err := s.store.ListTroopMembers(ctx, troopID, limit, offset)
	if err != nil {
		s.logError(r, "member list failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	total, err := s.store.CountTroopMembers(ctx, troopID)
	if err != nil {
		s.logError(r, "member count failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	data := make([]memberResponse, 0, len(members))
	for _, m := range members {
		data = append(data, memberResponse{
			UserID:   m.UserID,
			Email:    m.Email,
			FullName: m.FullName,
			Role:     m.Role,
			DenID:    m.DenID,
			JoinedAt: m.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"meta": paginationMeta(total, limit, offset),
	})
}

type troopResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (s *Server) ListTroops(w http.ResponseWriter, r *http.Request) {
	troops, err := s.store.ListTroops(r.Context())
	if err != nil {
		s.logError(r, "troop list failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	data := make([]troopResponse, 0, len(troops))
	for _, t := range troops {
		data = append(data, troopResponse{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (s *Server) GetTroop(w http.ResponseWriter, r *http.Request) {
	troopID, err := parseUUIDParam(r, "troopID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid troop ID", nil))
		return
	}

	troop, err := s.store.GetTroop(r.Context(), troopID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, NotFound("Troop"))
		return
	}
	if err != nil {
		s.logError(r, "troop lookup failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, troopResponse{ID: troop.ID, Name: troop.Name})
}

func (s *Server) ListDens(w http.ResponseWriter, r *http.Request) {
	troopID, err := parseUUIDParam(r, "troopID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid troop ID", nil))
		return
	}

	dens, err := s.store.ListDens(r.Context(), troopID)
	if err != nil {
		s.logError(r, "den list failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": dens})
}
