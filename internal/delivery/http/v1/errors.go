package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cardealer-backend/internal/delivery/http/middleware"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// writeUsecaseError maps domain errors to HTTP statuses. Unknown errors are logged
// and reported as 500 without leaking details.
func writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrAccountLocked):
		status = http.StatusTooManyRequests
	}

	if status == http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		utils.WriteError(w, status, "Internal server error")
		return
	}
	utils.WriteError(w, status, err.Error())
}

// currentUser writes 401 and returns false when AuthMiddleware did not run.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return user, ok
}

// decodeBody writes 400 on a malformed body.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := utils.DecodeJSON(r, v); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeList(w http.ResponseWriter, data interface{}, page domain.Pagination) {
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: data, Meta: &page})
}

func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return page, limit
}

// queryInt ignores malformed values.
func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

func queryBool(r *http.Request, key string) *bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// queryDecimal returns an ErrInvalidInput error for malformed amounts.
func queryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, invalidParam(key)
	}
	return &d, nil
}

// queryDate accepts YYYY-MM-DD or RFC 3339. A bare date used as an upper bound
// covers the whole day.
func queryDate(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, invalidParam(key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func invalidParam(key string) error {
	return fmt.Errorf("%w: malformed %s", domain.ErrInvalidInput, key)
}
