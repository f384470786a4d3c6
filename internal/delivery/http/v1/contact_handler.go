package v1

import (
	"net/http"

	"cardealer-backend/internal/domain"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"
)

type ContactHandler struct {
	contactUC *usecase.ContactUsecase
}

func NewContactHandler(uc *usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{contactUC: uc}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req usecase.ContactInput
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.contactUC.Submit(r.Context(), req); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, domain.Response{Success: true, Message: "Thanks, we will be in touch"})
}

// List: ?unread=true&page=&limit=
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := domain.MessageFilter{Page: page, Limit: limit}
	if unread := queryBool(r, "unread"); unread != nil {
		filter.UnreadOnly = *unread
	}

	msgs, pagination, err := h.contactUC.List(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	writeList(w, msgs, pagination)
}

func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.contactUC.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contactUC.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
