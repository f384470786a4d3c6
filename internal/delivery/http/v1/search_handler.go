package v1

import (
	"net/http"

	"cardealer-backend/internal/domain"
)

type SearchHandler struct {
	searchUC domain.SearchUsecase
}

func NewSearchHandler(searchUC domain.SearchUsecase) *SearchHandler {
	return &SearchHandler{
		searchUC: searchUC,
	}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	items, pagination, err := h.searchUC.Search(r.Context(), r.URL.Query().Get("q"), page, limit)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, items, pagination)
}
