package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/store"
)

type recordSaleRequest struct {
	Item        string `json:"item" validate:"required,max=100"`
	Boxes       int    `json:"boxes" validate:"required,gt=0,lte=1000"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}

type saleResponse struct {
	ID          uuid.UUID `json:"id"`
	ScoutID     uuid.UUID `json:"scout_id"`
	Item        string    `json:"item"`
	Boxes       int       `json:"boxes"`
	AmountCents int64     `json:"amount_cents"`
	RecordedAt  time.Time `json:"recorded_at"`
}

func toSaleResponse(sale store.Sale) saleResponse {
	return saleResponse{
		ID:          sale.ID,
		ScoutID:     sale.ScoutID,
		Item:        sale.Item,
		Boxes:       sale.Boxes,
		AmountCents: sale.AmountCents,
		RecordedAt:  sale.RecordedAt,
	}
}

// RecordSale records a cookie sale for a scout. Parents record for scouts in
// their household, leaders for their den, per the privilege table.
func (s *Server) RecordSale(w http.ResponseWriter, r *http.Request) {
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

	var req recordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", validationDetails(err)))
		return
	}

	ctx := r.Context()
	decision, actor, err := s.authorize(ctx, troopID, privileges.LevelMember, privileges.RecordSales, scoutID)
	if err != nil {
		s.logError(r, "authorize failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	if !decision.Allowed() {
		writeDecision(w, decision)
		return
	}

	// The scout must belong to this troop; household linkage alone is not
	// enough to record into another unit's books.
	if _, err := s.store.GetMembership(ctx, troopID, scoutID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, NotFound("Membership"))
			return
		}
		s.logError(r, "membership lookup failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	sale, err := s.store.InsertSale(ctx, store.Sale{
		TroopID:     troopID,
		ScoutID:     scoutID,
		RecordedBy:  actor.User.ID,
		Item:        req.Item,
		Boxes:       req.Boxes,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		s.logError(r, "sale insert failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, toSaleResponse(sale))
}

// ListSales returns a scout's sale history.
func (s *Server) ListSales(w http.ResponseWriter, r *http.Request) {
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

	ctx := r.Context()
	decision, _, err := s.authorize(ctx, troopID, privileges.LevelMember, privileges.ViewSales, scoutID)
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

	limit, offset := parsePagination(r)

	sales, err := s.store.ListSalesByScout(ctx, scoutID, limit, offset)
	if err != nil {
		s.logError(r, "sale list failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}
	total, err := s.store.CountSalesByScout(ctx, scoutID)
	if err != nil {
		s.logError(r, "sale count failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	data := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		data = append(data, toSaleResponse(sale))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"meta": paginationMeta(total, limit, offset),
	})
}
