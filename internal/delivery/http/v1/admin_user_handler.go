package v1

import (
	"net/http"

	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type AdminUserHandler struct {
	authUC *usecase.AuthUsecase
}

func NewAdminUserHandler(authUC *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{authUC: authUC}
}

func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, pagination, err := h.authUC.ListUsers(r.Context(), page, limit)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, users, pagination)
}

func (h *AdminUserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUC.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *AdminUserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.authUC.SetUserRole(r.Context(), actor.ID, r.PathValue("id"), req.Role); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Role updated"})
}

func (h *AdminUserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		IsActive bool `json:"isActive"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.authUC.SetUserActive(r.Context(), actor.ID, r.PathValue("id"), req.IsActive); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "User updated"})
}
