package http

import (
	"net/http"

	"github.com/aura-clinic/aura/internal/auth/service"
	"github.com/aura-clinic/aura/pkg/httpx"
	"github.com/aura-clinic/aura/pkg/jwtx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

// UserInfoHandler serves the authenticated account's own profile.
type UserInfoHandler struct {
	UserService *service.UserService
}

func (h *UserInfoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	info, roles, err := h.UserService.Profile(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to load profile", "user_id", userID, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{
		"user":  info,
		"roles": roles,
	})
}

func (h *UserInfoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil || req.FullName == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	info, err := h.UserService.UpdateProfile(ctx, userID, req.FullName, req.Avatar)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to update profile", "user_id", userID, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	httpx.WriteData(w, http.StatusOK, info)
}

// VerifyHandler echoes back the validated claims, letting the portal check
// whether a stored access token is still good without a full login.
func VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		httpx.WriteData(w, http.StatusOK, map[string]any{
			"userId":   claims.Subject,
			"email":    claims.Email,
			"fullName": claims.FullName,
			"roles":    claims.Roles,
			"expires":  claims.ExpiresAt.Unix(),
		})
	}
}
