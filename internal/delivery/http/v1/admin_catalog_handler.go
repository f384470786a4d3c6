package v1

import (
	"net/http"

	"cardealer-backend/internal/domain"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type AdminCatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogUC: uc}
}

type statusReq struct {
	IsActive bool `json:"isActive"`
}

// --- Cars ---

// ListCars accepts the public filters and includes inactive cars.
func (h *AdminCatalogHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	filter, err := carFilterFromQuery(r)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	filter.IncludeInactive = true

	cars, pagination, err := h.catalogUC.ListCars(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, cars, pagination)
}

func (h *AdminCatalogHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	car, err := h.catalogUC.GetCarByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, car)
}

func (h *AdminCatalogHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var car domain.Car
	if !decodeBody(w, r, &car) {
		return
	}

	if err := h.catalogUC.CreateCar(r.Context(), actor.ID, &car); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, car)
}

// UpdateCar replaces the car's attributes. Stock is changed through inventory adjustments only.
func (h *AdminCatalogHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	var car domain.Car
	if !decodeBody(w, r, &car) {
		return
	}
	car.ID = r.PathValue("id")

	if err := h.catalogUC.UpdateCar(r.Context(), &car); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, car)
}

func (h *AdminCatalogHandler) SetCarStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.catalogUC.SetCarActive(r.Context(), r.PathValue("id"), req.IsActive); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"isActive": req.IsActive})
}

// DeleteCar is a soft delete; order history keeps pointing at the row.
func (h *AdminCatalogHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.SetCarActive(r.Context(), r.PathValue("id"), false); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Parts ---

func (h *AdminCatalogHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	filter, err := partFilterFromQuery(r)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	filter.IncludeInactive = true

	parts, pagination, err := h.catalogUC.ListParts(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, parts, pagination)
}

func (h *AdminCatalogHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.catalogUC.GetPartByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, part)
}

func (h *AdminCatalogHandler) CreatePart(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var part domain.CarPart
	if !decodeBody(w, r, &part) {
		return
	}

	if err := h.catalogUC.CreatePart(r.Context(), actor.ID, &part); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, part)
}

func (h *AdminCatalogHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	var part domain.CarPart
	if !decodeBody(w, r, &part) {
		return
	}
	part.ID = r.PathValue("id")

	if err := h.catalogUC.UpdatePart(r.Context(), &part); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, part)
}

func (h *AdminCatalogHandler) SetPartStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.catalogUC.SetPartActive(r.Context(), r.PathValue("id"), req.IsActive); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"isActive": req.IsActive})
}

func (h *AdminCatalogHandler) DeletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.SetPartActive(r.Context(), r.PathValue("id"), false); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Brands ---

func (h *AdminCatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var brand domain.Brand
	if !decodeBody(w, r, &brand) {
		return
	}
	if err := h.catalogUC.CreateBrand(r.Context(), &brand); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, brand)
}

func (h *AdminCatalogHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var brand domain.Brand
	if !decodeBody(w, r, &brand) {
		return
	}
	brand.ID = r.PathValue("id")

	if err := h.catalogUC.UpdateBrand(r.Context(), &brand); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, brand)
}

// DeleteBrand fails with 409 while cars still reference the brand.
func (h *AdminCatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.DeleteBrand(r.Context(), r.PathValue("id")); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Categories ---

func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat domain.Category
	if !decodeBody(w, r, &cat) {
		return
	}
	if err := h.catalogUC.CreateCategory(r.Context(), &cat); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, cat)
}

func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var cat domain.Category
	if !decodeBody(w, r, &cat) {
		return
	}
	cat.ID = r.PathValue("id")

	if err := h.catalogUC.UpdateCategory(r.Context(), &cat); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cat)
}

func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Inventory ---

func (h *AdminCatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req usecase.StockAdjustment
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.catalogUC.AdjustStock(r.Context(), actor.ID, req)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entry)
}

// GetInventoryLogs: ?item_type=car|part&item_id=<uuid>&limit=50
func (h *AdminCatalogHandler) GetInventoryLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logs, err := h.catalogUC.GetInventoryLogs(r.Context(), q.Get("item_type"), q.Get("item_id"), queryInt(r, "limit"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, logs)
}
