package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/troopvault/tv-backend/internal/privileges"
)

type paymentLinkRequest struct {
	AmountCents int `json:"amount_cents" validate:"required,gt=0"`
}

// GeneratePaymentLink creates a payment URL plus QR image for a scout's
// sale. Parents generate links for their own scouts, cookie leaders for the
// whole troop.
func (s *Server) GeneratePaymentLink(w http.ResponseWriter, r *http.Request) {
	troopID, err := parseUUIDParam(r, "troopID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid troop ID", nil))
		return
	}
	scoutID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid user ID", nil))
		return
	}

	var req paymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", validationDetails(err)))
		return
	}

	ctx := r.Context()
	decision, _, err := s.authorize(ctx, troopID, privileges.LevelMember, privileges.GeneratePaymentLinks, scoutID)
	if err != nil {
		s.logError(r, "authorize failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	if !decision.Allowed() {
		writeDecision(w, decision)
		return
	}

	if _, err := s.store.GetMembership(ctx, troopID, scoutID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, NotFound("Membership"))
			return
		}
		s.logError(r, "membership lookup failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	link, err := s.payments.GeneratePaymentLink(ctx, troopID, scoutID, req.AmountCents)
	if err != nil {
		s.logError(r, "payment link generation failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, link)
}
