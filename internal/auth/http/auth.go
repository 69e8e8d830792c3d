package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aura-clinic/aura/internal/auth/metrics"
	"github.com/aura-clinic/aura/internal/auth/service"
	"github.com/aura-clinic/aura/pkg/httpx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

// Client-facing error strings. The credentials message is identical for
// unknown email and wrong password on purpose.
const (
	msgInvalidCredentials = "email or password incorrect"
	msgEmailTaken         = "email already registered"
	msgInvalidBody        = "invalid request body"
	msgPasswordTooShort   = "password must be at least 6 characters"
	msgInvalidEmail       = "invalid email address"
	msgServerError        = "internal server error"
)

// AuthHandler serves the credential endpoints: login, register, google,
// refresh and logout.
type AuthHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
	Metrics      *metrics.Metrics
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Metrics.LoginFailed(metrics.MethodPassword)
		writeAuthError(w, r, err)
		return
	}

	h.Metrics.LoginSucceeded(metrics.MethodPassword)
	httpx.WriteData(w, http.StatusOK, sess)
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusBadRequest, msgEmailTaken)
		case errors.Is(err, service.ErrPasswordTooShort):
			httpx.WriteError(w, http.StatusBadRequest, msgPasswordTooShort)
		case errors.Is(err, service.ErrInvalidEmail):
			httpx.WriteError(w, http.StatusBadRequest, msgInvalidEmail)
		default:
			slogx.FromContext(r.Context()).Error("register failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	h.Metrics.RegistrationCompleted()
	httpx.WriteData(w, http.StatusCreated, sess)
}

func (h *AuthHandler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.AuthService.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		h.Metrics.LoginFailed(metrics.MethodGoogle)
		if errors.Is(err, service.ErrInvalidGoogleToken) || errors.Is(err, service.ErrNoRolesAssigned) {
			httpx.WriteError(w, http.StatusUnauthorized, "google sign-in failed")
			return
		}
		slogx.FromContext(r.Context()).Error("google login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.Metrics.LoginSucceeded(metrics.MethodGoogle)
	httpx.WriteData(w, http.StatusOK, sess)
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.TokenService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.Metrics.LoginFailed(metrics.MethodRefresh)
		if errors.Is(err, service.ErrInvalidRefresh) || errors.Is(err, service.ErrNoRolesAssigned) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		slogx.FromContext(r.Context()).Error("refresh failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.Metrics.LoginSucceeded(metrics.MethodRefresh)
	httpx.WriteData(w, http.StatusOK, sess)
}

// HandleLogout always answers 200; a logout must never strand the client in
// a half-signed-out state because the token was already gone.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	_ = decodeJSON(r, &req)

	if err := h.AuthService.Logout(r.Context(), req.RefreshToken); err != nil {
		slogx.FromContext(r.Context()).Warn("logout revocation failed", "error", err)
	}

	httpx.WriteData(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNoRolesAssigned):
		httpx.WriteError(w, http.StatusUnauthorized, msgInvalidCredentials)
	default:
		slogx.FromContext(r.Context()).Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
