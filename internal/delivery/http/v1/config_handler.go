package v1

import (
	"net/http"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/cache"
	"cardealer-backend/pkg/utils"
)

const enumsCacheKey = "system:config:enums"

type ConfigHandler struct {
	cache cache.CacheService
	cfg   *config.Config
}

func NewConfigHandler(cache cache.CacheService, cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cache: cache, cfg: cfg}
}

// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if val, found := h.cache.Get(enumsCacheKey); found {
		utils.WriteJSON(w, http.StatusOK, val)
		return
	}

	response := map[string]interface{}{
		"orderStatuses":   domain.OrderStatuses,
		"paymentStatuses": domain.PaymentStatuses,
		"paymentMethods":  domain.PaymentMethods,
		"itemTypes":       []string{domain.ItemTypeCar, domain.ItemTypePart},
		"conditions":      []string{domain.ConditionNew, domain.ConditionUsed},
		"fuelTypes":       domain.FuelTypes,
		"transmissions":   domain.Transmissions,
		"bodyTypes":       domain.BodyTypes,
		"carSorts": []string{
			domain.SortNewest, domain.SortPriceAsc, domain.SortPriceDesc,
			domain.SortYearDesc, domain.SortMileageAsc,
		},
		"pricing": map[string]interface{}{
			"freeShippingThreshold": h.cfg.FreeShippingThreshold,
			"flatShippingFee":       h.cfg.FlatShippingFee,
			"taxRatePercent":        h.cfg.TaxRatePercent,
			"maxCartQuantity":       h.cfg.MaxCartQuantity,
		},
	}

	h.cache.Set(enumsCacheKey, response, time.Hour)
	utils.WriteJSON(w, http.StatusOK, response)
}
