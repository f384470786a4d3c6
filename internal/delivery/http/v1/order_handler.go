package v1

import (
	"net/http"

	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: uc}
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req usecase.CheckoutInput
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orderUC.Checkout(r.Context(), user.ID, req)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	orders, pagination, err := h.orderUC.GetMyOrders(r.Context(), user.ID, page, limit)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, orders, pagination)
}

func (h *OrderHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	order, err := h.orderUC.GetMyOrder(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// CancelMyOrder takes an optional {"reason": "..."} body.
func (h *OrderHandler) CancelMyOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orderUC.CancelMyOrder(r.Context(), user.ID, r.PathValue("id"), req.Reason)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}
