package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/queue"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type otpVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	access, refresh, err := s.auth.LoginPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound),
			errors.Is(err, auth.ErrInvalidPassword),
			errors.Is(err, auth.ErrPasswordNotSet):
			writeError(w, http.StatusUnauthorized, Unauthorized("Invalid email or password"))
		default:
			s.logError(r, "login failed", err)
			writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	code, err := s.auth.RequestOTP(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOTPCooldown):
			writeError(w, http.StatusTooManyRequests, NewError(CodeConflict, "A code was sent recently, try again shortly"))
		case errors.Is(err, auth.ErrUserNotFound):
			// Same response as success so the endpoint cannot be used to
			// probe which emails have accounts.
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
		default:
			s.logError(r, "otp request failed", err)
			writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		}
		return
	}

	if _, err := s.queue.Enqueue(queue.TypeEmailDelivery, queue.EmailDeliveryPayload{
		To:      req.Email,
		Subject: "Your TroopVault sign-in code",
		Body:    "Your one-time sign-in code is " + code + ". It expires in 5 minutes.",
	}); err != nil {
		s.logError(r, "otp email enqueue failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	access, refresh, err := s.auth.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOTPMaxAttempts):
			writeError(w, http.StatusTooManyRequests, NewError(CodeConflict, "Too many attempts, request a new code"))
		case errors.Is(err, auth.ErrOTPInvalid), errors.Is(err, auth.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, Unauthorized("Invalid or expired code"))
		default:
			s.logError(r, "otp verify failed", err)
			writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	access, refresh, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshInvalid) {
			writeError(w, http.StatusUnauthorized, Unauthorized("Invalid refresh token"))
			return
		}
		s.logError(r, "token refresh failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.logError(r, "logout failed", err)
		writeError(w, http.StatusInternalServerError, InternalError("Internal server error"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation, answering the request itself on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", nil))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid request body", validationDetails(err)))
		return false
	}
	return true
}
