package v1

import (
	"net/http"

	"cardealer-backend/internal/domain"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type AdminOrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{orderUC: uc}
}

type statusChangeReq struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// ListOrders: ?status=&payment_status=&search=&from=YYYY-MM-DD&to=YYYY-MM-DD&page=&limit=
func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(r)
	filter := domain.OrderFilter{
		Page:          page,
		Limit:         limit,
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		Search:        q.Get("search"),
	}

	var err error
	if filter.From, err = queryDate(r, "from", false); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to", true); err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	orders, pagination, err := h.orderUC.ListOrders(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, orders, pagination)
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req statusChangeReq
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orderUC.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.Status, req.Note, admin.ID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req statusChangeReq
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orderUC.UpdatePaymentStatus(r.Context(), r.PathValue("id"), req.Status, req.Note, admin.ID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orderUC.GetOrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, history)
}
