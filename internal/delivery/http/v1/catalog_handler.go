package v1

import (
	"net/http"

	"cardealer-backend/internal/domain"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

// carFilterFromQuery reads the car listing query string, e.g.
// ?brand=toyota&condition=used&year_min=2018&price_max=25000&sort=price_asc
func carFilterFromQuery(r *http.Request) (domain.CarFilter, error) {
	q := r.URL.Query()
	page, limit := pageParams(r)
	f := domain.CarFilter{
		Brand:        q.Get("brand"),
		Category:     q.Get("category"),
		Condition:    q.Get("condition"),
		FuelType:     q.Get("fuel_type"),
		Transmission: q.Get("transmission"),
		BodyType:     q.Get("body_type"),
		YearMin:      queryInt(r, "year_min"),
		YearMax:      queryInt(r, "year_max"),
		MileageMax:   queryInt(r, "mileage_max"),
		Query:        q.Get("q"),
		Featured:     queryBool(r, "featured"),
		Sort:         q.Get("sort"),
		Page:         page,
		Limit:        limit,
	}

	var err error
	if f.PriceMin, err = queryDecimal(r, "price_min"); err != nil {
		return f, err
	}
	if f.PriceMax, err = queryDecimal(r, "price_max"); err != nil {
		return f, err
	}
	return f, nil
}

func partFilterFromQuery(r *http.Request) (domain.PartFilter, error) {
	q := r.URL.Query()
	page, limit := pageParams(r)
	f := domain.PartFilter{
		Brand:           q.Get("brand"),
		Category:        q.Get("category"),
		CompatibleModel: q.Get("model"),
		Query:           q.Get("q"),
		Sort:            q.Get("sort"),
		Page:            page,
		Limit:           limit,
	}
	if inStock := queryBool(r, "in_stock"); inStock != nil {
		f.InStockOnly = *inStock
	}

	var err error
	if f.PriceMin, err = queryDecimal(r, "price_min"); err != nil {
		return f, err
	}
	if f.PriceMax, err = queryDecimal(r, "price_max"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *CatalogHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	filter, err := carFilterFromQuery(r)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	cars, pagination, err := h.catalogUC.ListCars(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, cars, pagination)
}

func (h *CatalogHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	car, err := h.catalogUC.GetCarBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, car)
}

func (h *CatalogHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	filter, err := partFilterFromQuery(r)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	parts, pagination, err := h.catalogUC.ListParts(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, parts, pagination)
}

func (h *CatalogHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.catalogUC.GetPartBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, part)
}

func (h *CatalogHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalogUC.GetBrands(r.Context())
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	utils.WriteJSON(w, http.StatusOK, brands)
}

// GetCategories takes an optional ?kind=car|part.
func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalogUC.GetCategories(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	utils.WriteJSON(w, http.StatusOK, cats)
}
