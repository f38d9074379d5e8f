package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/privileges"
)

type auditEventResponse struct {
	ID            uuid.UUID  `json:"id"`
	ActorID       uuid.UUID  `json:"actor_id"`
	Action        string     `json:"action"`
	PrivilegeCode string     `json:"privilege_code"`
	RequiredLevel int        `json:"required_level"`
	ActualScope   string     `json:"actual_scope"`
	TargetOwnerID *uuid.UUID `json:"target_owner_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// ListAuditEvents returns the troop's authorization audit trail, newest
// first. Admin only.
func (s *Server) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
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
	decision, _, err := s.authorize(ctx, troopID, privileges.LevelAdmin, privileges.ViewAuditLog, user.ID)
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

	events, err := s.store.ListAuditEvents(ctx, troopID, limit, offset)
	if err != nil {
		s.logError(r, "audit list failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	total, err := s.store.CountAuditEvents(ctx, troopID)
	if err != nil {
		s.logError(r, "audit count failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	data := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		data = append(data, auditEventResponse{
			ID:            e.ID,
			ActorID:       e.ActorID,
			Action:        e.Action,
			PrivilegeCode: e.PrivilegeCode,
			RequiredLevel: e.RequiredLevel,
			ActualScope:   e.ActualScope,
			TargetOwnerID: e.TargetOwnerID,
			OccurredAt:    e.OccurredAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"meta": paginationMeta(total, limit, offset),
	})
}
