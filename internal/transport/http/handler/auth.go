package handler

import (
	"encoding/json"
	"net/http"

	"github.com/glucotrack/api/internal/application/auth"
	"github.com/glucotrack/api/internal/domain"
	"github.com/glucotrack/api/internal/pkg/validate"
	"github.com/glucotrack/api/internal/transport/http/middleware"
)

// AuthHandler handles registration, login, MFA, refresh and the password
// reset/change endpoints.
type AuthHandler struct {
	svc   auth.Service
	reset *auth.PasswordResetFlow
}

func NewAuthHandler(svc auth.Service, reset *auth.PasswordResetFlow) *AuthHandler {
	return &AuthHandler{svc: svc, reset: reset}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	pair, err := h.svc.Register(r.Context(), req, middleware.ClientIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTokenEnvelope(pair.AccessToken, pair.RefreshToken))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.Login(r.Context(), req, middleware.ClientIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	if result.MFARequired {
		writeJSON(w, http.StatusOK, MFAEnvelope{
			Message:     "a verification code has been sent to your email",
			MFARequired: true,
			OTPSent:     true,
		})
		return
	}
	writeJSON(w, http.StatusOK, newTokenEnvelope(result.AccessToken, result.RefreshToken))
}

func (h *AuthHandler) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req auth.MFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	pair, err := h.svc.VerifyMFA(r.Context(), req, middleware.ClientIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenEnvelope(pair.AccessToken, pair.RefreshToken))
}

func (h *AuthHandler) SetupMFA(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.SetupMFA(r.Context(), userID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "a verification code has been sent to your email"})
}

func (h *AuthHandler) ConfirmMFA(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		OTP string `json:"otp" validate:"required,len=6,numeric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.ConfirmMFA(r.Context(), userID, req.OTP, middleware.ClientIP(r)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "MFA enabled"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token required")
		return
	}
	access, refresh, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenEnvelope(access, refresh))
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.reset.Request(r.Context(), req.Email, middleware.ClientIP(r)); err != nil {
		httpError(w, err)
		return
	}
	// Same answer whether or not the account exists.
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "if the account exists, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.reset.Confirm(r.Context(), req.Token, req.NewPassword, middleware.ClientIP(r)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password has been reset"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.reset.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, middleware.ClientIP(r)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password has been changed"})
}
