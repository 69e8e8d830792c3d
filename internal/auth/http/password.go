package http

import (
	"errors"
	"net/http"

	"github.com/aura-clinic/aura/internal/auth/metrics"
	"github.com/aura-clinic/aura/internal/auth/service"
	"github.com/aura-clinic/aura/pkg/httpx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

// PasswordHandler serves the reset and change-password flows.
type PasswordHandler struct {
	ResetService *service.PasswordResetService
	UserService  *service.UserService
	Metrics      *metrics.Metrics
}

// HandleForgot answers 200 whether or not the email exists, so the endpoint
// cannot be used to probe for accounts.
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.ResetService.RequestReset(r.Context(), req.Email); err != nil {
		slogx.FromContext(r.Context()).Error("reset request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.Metrics.ResetRequested()
	httpx.WriteData(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset link has been sent",
	})
}

func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	err := h.ResetService.CompleteReset(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			httpx.WriteError(w, http.StatusBadRequest, "invalid or expired reset token")
		case errors.Is(err, service.ErrPasswordTooShort):
			httpx.WriteError(w, http.StatusBadRequest, msgPasswordTooShort)
		default:
			slogx.FromContext(r.Context()).Error("reset failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.CurrentPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	err := h.UserService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "current password incorrect")
		case errors.Is(err, service.ErrPasswordTooShort):
			httpx.WriteError(w, http.StatusBadRequest, msgPasswordTooShort)
		default:
			slogx.FromContext(r.Context()).Error("change password failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]string{"message": "password updated"})
}
