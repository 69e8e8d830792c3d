package http

import (
	"errors"
	"net/http"

	"github.com/aura-clinic/aura/internal/auth/service"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/pkg/httpx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

const msgUnknownUserOrRole = "user or role not found"

// RolesHandler exposes the role catalogue and role assignment. Admin only.
type RolesHandler struct {
	RolesService *service.RolesService
}

func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListAll(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to list roles", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	httpx.WriteData(w, http.StatusOK, roles)
}

func (h *RolesHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req AssignRoleRequest
	if err := decodeJSON(r, &req); err != nil || req.UserID == "" || req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	err := h.RolesService.Assign(r.Context(), req.UserID, req.Role)
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, msgUnknownUserOrRole)
	case err != nil:
		slogx.FromContext(r.Context()).Error("failed to assign role", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgServerError)
	default:
		slogx.FromContext(r.Context()).Info("role assigned",
			"user_id", req.UserID, "role", req.Role)
		httpx.WriteData(w, http.StatusOK, map[string]string{"message": "role assigned"})
	}
}
