package v1

import (
	"net/http"

	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: uc}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cart, err := h.cartUC.GetCart(r.Context(), user.ID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// AddItem adds quantity to the line, creating it when absent.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req usecase.CartItemInput
	if !decodeBody(w, r, &req) {
		return
	}

	cart, err := h.cartUC.AddItem(r.Context(), user.ID, req)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// UpdateItem sets an absolute quantity; zero removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req usecase.CartItemInput
	if !decodeBody(w, r, &req) {
		return
	}

	cart, err := h.cartUC.UpdateItem(r.Context(), user.ID, req)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.cartUC.RemoveItem(r.Context(), user.ID, r.PathValue("itemType"), r.PathValue("itemId"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.cartUC.Clear(r.Context(), user.ID); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
