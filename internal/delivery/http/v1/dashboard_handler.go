package v1

import (
	"net/http"

	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type DashboardHandler struct {
	dashboardUC *usecase.DashboardUsecase
}

func NewDashboardHandler(uc *usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboardUC: uc}
}

func (h *DashboardHandler) Customer(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardUC.Customer(r.Context(), user.ID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}

// Admin: ?from=YYYY-MM-DD&to=YYYY-MM-DD, default last 30 days.
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from", false)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	to, err := queryDate(r, "to", true)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	d, err := h.dashboardUC.Admin(r.Context(), from, to)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}
