package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/cache"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"
)

const (
	catalogDefaultLimit = 12
	catalogMaxLimit     = 100
	slugAttempts        = 3
	minCarYear          = 1900
)

// Cache keys
const (
	keyBrands          = "catalog:brands"
	keyCategoryPrefix  = "catalog:categories:"
	keyCarSlugPrefix   = "catalog:car:"
	keyPartSlugPrefix  = "catalog:part:"
	keySitemap         = "sitemap:items"
	keyDashboardPrefix = "dashboard:"
)

type CatalogUsecase struct {
	repo      domain.CatalogRepository
	txManager domain.TransactionManager
	cache     cache.CacheService
	cfg       *config.Config
}

func NewCatalogUsecase(repo domain.CatalogRepository, txManager domain.TransactionManager, cache cache.CacheService, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{
		repo:      repo,
		txManager: txManager,
		cache:     cache,
		cfg:       cfg,
	}
}

// --- Cars ---

func (uc *CatalogUsecase) ListCars(ctx context.Context, f domain.CarFilter) ([]domain.Car, domain.Pagination, error) {
	page := domain.PageRequest{Page: f.Page, Limit: f.Limit}.Normalize(catalogDefaultLimit, catalogMaxLimit)
	f.Page, f.Limit = page.Page, page.Limit

	if f.Condition != "" && f.Condition != domain.ConditionNew && f.Condition != domain.ConditionUsed {
		return nil, domain.Pagination{}, fmt.Errorf("%w: condition must be new or used", domain.ErrInvalidInput)
	}
	if f.YearMin > 0 && f.YearMax > 0 && f.YearMin > f.YearMax {
		return nil, domain.Pagination{}, fmt.Errorf("%w: yearMin is greater than yearMax", domain.ErrInvalidInput)
	}
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		return nil, domain.Pagination{}, fmt.Errorf("%w: minPrice is greater than maxPrice", domain.ErrInvalidInput)
	}

	cars, total, err := uc.repo.GetCars(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list cars: %w", err)
	}
	return cars, domain.NewPagination(f.Page, f.Limit, total), nil
}

// GetCarBySlug serves the public detail page; inactive cars are reported as missing.
func (uc *CatalogUsecase) GetCarBySlug(ctx context.Context, slug string) (*domain.Car, error) {
	key := keyCarSlugPrefix + slug
	if val, found := uc.cache.Get(key); found {
		return val.(*domain.Car), nil
	}

	car, err := uc.repo.GetCarBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !car.IsActive {
		return nil, domain.ErrNotFound
	}

	uc.cache.Set(key, car, uc.cfg.CacheItemTTL)
	return car, nil
}

func (uc *CatalogUsecase) GetCarByID(ctx context.Context, id string) (*domain.Car, error) {
	return uc.repo.GetCarByID(ctx, id)
}

func (uc *CatalogUsecase) validateCar(c *domain.Car) error {
	c.Model = strings.TrimSpace(c.Model)
	switch {
	case c.BrandID == "":
		return fmt.Errorf("%w: brandId is required", domain.ErrInvalidInput)
	case c.Model == "":
		return fmt.Errorf("%w: model is required", domain.ErrInvalidInput)
	case c.Year < minCarYear || c.Year > time.Now().Year()+1:
		return fmt.Errorf("%w: year %d is out of range", domain.ErrInvalidInput, c.Year)
	case !c.Price.IsPositive():
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	case c.SalePrice != nil && c.SalePrice.GreaterThanOrEqual(c.Price):
		return fmt.Errorf("%w: sale price must be below the list price", domain.ErrInvalidInput)
	case c.Mileage < 0 || c.Stock < 0:
		return fmt.Errorf("%w: mileage and stock must not be negative", domain.ErrInvalidInput)
	}
	if c.Condition == "" {
		c.Condition = domain.ConditionUsed
	}
	if c.Condition != domain.ConditionNew && c.Condition != domain.ConditionUsed {
		return fmt.Errorf("%w: condition must be new or used", domain.ErrInvalidInput)
	}
	if c.Images == nil {
		c.Images = []string{}
	}
	return nil
}

func (uc *CatalogUsecase) CreateCar(ctx context.Context, actorID string, car *domain.Car) error {
	if err := uc.validateCar(car); err != nil {
		return err
	}
	brand, err := uc.repo.GetBrandByID(ctx, car.BrandID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown brand", domain.ErrInvalidInput)
		}
		return err
	}
	car.BrandName = brand.Name
	car.IsActive = true

	base := car.Slug
	if base == "" {
		base = utils.GenerateSlug(fmt.Sprintf("%d %s %s", car.Year, brand.Name, car.Model))
	}

	err = uc.withUniqueSlug(base, func(slug string) error {
		car.Slug = slug
		return uc.txManager.Do(ctx, func(ctx context.Context) error {
			if err := uc.repo.CreateCar(ctx, car); err != nil {
				return err
			}
			return uc.logInitialStock(ctx, actorID, domain.ItemTypeCar, car.ID, car.Stock)
		})
	})
	if err != nil {
		return fmt.Errorf("create car: %w", err)
	}

	uc.invalidateCatalog()
	logger.WithContext(ctx).Info().Str("car_id", car.ID).Str("slug", car.Slug).Msg("Car created")
	return nil
}

// UpdateCar never touches stock; stock moves only through AdjustStock.
func (uc *CatalogUsecase) UpdateCar(ctx context.Context, car *domain.Car) error {
	existing, err := uc.repo.GetCarByID(ctx, car.ID)
	if err != nil {
		return err
	}
	// stock and visibility only change through AdjustStock and SetCarActive
	car.Stock = existing.Stock
	car.IsActive = existing.IsActive
	if err := uc.validateCar(car); err != nil {
		return err
	}
	if car.Slug == "" {
		car.Slug = existing.Slug
	} else {
		car.Slug = utils.GenerateSlug(car.Slug)
	}

	if err := uc.repo.UpdateCar(ctx, car); err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	uc.cache.Delete(keyCarSlugPrefix + existing.Slug)
	uc.invalidateCatalog()
	return nil
}

// SetCarActive doubles as the soft delete.
func (uc *CatalogUsecase) SetCarActive(ctx context.Context, id string, active bool) error {
	car, err := uc.repo.GetCarByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.SetCarActive(ctx, id, active); err != nil {
		return err
	}
	uc.cache.Delete(keyCarSlugPrefix + car.Slug)
	uc.invalidateCatalog()
	return nil
}

// --- Parts ---

func (uc *CatalogUsecase) ListParts(ctx context.Context, f domain.PartFilter) ([]domain.CarPart, domain.Pagination, error) {
	page := domain.PageRequest{Page: f.Page, Limit: f.Limit}.Normalize(catalogDefaultLimit, catalogMaxLimit)
	f.Page, f.Limit = page.Page, page.Limit

	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		return nil, domain.Pagination{}, fmt.Errorf("%w: minPrice is greater than maxPrice", domain.ErrInvalidInput)
	}

	parts, total, err := uc.repo.GetParts(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list parts: %w", err)
	}
	return parts, domain.NewPagination(f.Page, f.Limit, total), nil
}

func (uc *CatalogUsecase) GetPartBySlug(ctx context.Context, slug string) (*domain.CarPart, error) {
	key := keyPartSlugPrefix + slug
	if val, found := uc.cache.Get(key); found {
		return val.(*domain.CarPart), nil
	}

	part, err := uc.repo.GetPartBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !part.IsActive {
		return nil, domain.ErrNotFound
	}

	uc.cache.Set(key, part, uc.cfg.CacheItemTTL)
	return part, nil
}

func (uc *CatalogUsecase) GetPartByID(ctx context.Context, id string) (*domain.CarPart, error) {
	return uc.repo.GetPartByID(ctx, id)
}

func validatePart(p *domain.CarPart) error {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case p.SKU == "":
		return fmt.Errorf("%w: sku is required", domain.ErrInvalidInput)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	case p.SalePrice != nil && p.SalePrice.GreaterThanOrEqual(p.Price):
		return fmt.Errorf("%w: sale price must be below the list price", domain.ErrInvalidInput)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}

	models := p.CompatibleModels[:0]
	for _, m := range p.CompatibleModels {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	p.CompatibleModels = models
	if p.CompatibleModels == nil {
		p.CompatibleModels = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

func (uc *CatalogUsecase) CreatePart(ctx context.Context, actorID string, part *domain.CarPart) error {
	if err := validatePart(part); err != nil {
		return err
	}
	part.IsActive = true

	base := part.Slug
	if base == "" {
		base = utils.GenerateSlug(part.Name)
	}

	err := uc.withUniqueSlug(base, func(slug string) error {
		part.Slug = slug
		return uc.txManager.Do(ctx, func(ctx context.Context) error {
			if err := uc.repo.CreatePart(ctx, part); err != nil {
				return err
			}
			return uc.logInitialStock(ctx, actorID, domain.ItemTypePart, part.ID, part.Stock)
		})
	})
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}

	uc.invalidateCatalog()
	logger.WithContext(ctx).Info().Str("part_id", part.ID).Str("sku", part.SKU).Msg("Part created")
	return nil
}

func (uc *CatalogUsecase) UpdatePart(ctx context.Context, part *domain.CarPart) error {
	existing, err := uc.repo.GetPartByID(ctx, part.ID)
	if err != nil {
		return err
	}
	part.Stock = existing.Stock
	part.IsActive = existing.IsActive
	if err := validatePart(part); err != nil {
		return err
	}
	if part.Slug == "" {
		part.Slug = existing.Slug
	} else {
		part.Slug = utils.GenerateSlug(part.Slug)
	}

	if err := uc.repo.UpdatePart(ctx, part); err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	uc.cache.Delete(keyPartSlugPrefix + existing.Slug)
	uc.invalidateCatalog()
	return nil
}

func (uc *CatalogUsecase) SetPartActive(ctx context.Context, id string, active bool) error {
	part, err := uc.repo.GetPartByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.SetPartActive(ctx, id, active); err != nil {
		return err
	}
	uc.cache.Delete(keyPartSlugPrefix + part.Slug)
	uc.invalidateCatalog()
	return nil
}

// --- Brands & Categories ---

func (uc *CatalogUsecase) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	if val, found := uc.cache.Get(keyBrands); found {
		return val.([]domain.Brand), nil
	}

	brands, err := uc.repo.GetBrands(ctx)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(keyBrands, brands, uc.cfg.CacheTaxonomyTTL)
	return brands, nil
}

func (uc *CatalogUsecase) CreateBrand(ctx context.Context, brand *domain.Brand) error {
	brand.Name = strings.TrimSpace(brand.Name)
	if brand.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if brand.Slug == "" {
		brand.Slug = utils.GenerateSlug(brand.Name)
	}
	if err := uc.repo.CreateBrand(ctx, brand); err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	uc.invalidateTaxonomy()
	return nil
}

func (uc *CatalogUsecase) UpdateBrand(ctx context.Context, brand *domain.Brand) error {
	brand.Name = strings.TrimSpace(brand.Name)
	if brand.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if brand.Slug == "" {
		brand.Slug = utils.GenerateSlug(brand.Name)
	}
	if err := uc.repo.UpdateBrand(ctx, brand); err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	uc.invalidateTaxonomy()
	// Brand names are denormalised into cached car details.
	uc.cache.DeletePrefix(keyCarSlugPrefix)
	uc.cache.DeletePrefix(keyPartSlugPrefix)
	return nil
}

// DeleteBrand fails with ErrConflict while cars still reference the brand.
func (uc *CatalogUsecase) DeleteBrand(ctx context.Context, id string) error {
	if err := uc.repo.DeleteBrand(ctx, id); err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	uc.invalidateTaxonomy()
	return nil
}

// GetCategories lists categories of one kind, or all of them when kind is empty.
func (uc *CatalogUsecase) GetCategories(ctx context.Context, kind string) ([]domain.Category, error) {
	if kind != "" && !domain.IsValidItemType(kind) {
		return nil, fmt.Errorf("%w: kind must be car or part", domain.ErrInvalidInput)
	}

	key := keyCategoryPrefix + kind
	if val, found := uc.cache.Get(key); found {
		return val.([]domain.Category), nil
	}

	cats, err := uc.repo.GetCategories(ctx, kind)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(key, cats, uc.cfg.CacheTaxonomyTTL)
	return cats, nil
}

func validateCategory(c *domain.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !domain.IsValidItemType(c.Kind) {
		return fmt.Errorf("%w: kind must be car or part", domain.ErrInvalidInput)
	}
	if c.Slug == "" {
		c.Slug = utils.GenerateSlug(c.Name)
	}
	return nil
}

func (uc *CatalogUsecase) CreateCategory(ctx context.Context, category *domain.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := uc.repo.CreateCategory(ctx, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	uc.invalidateTaxonomy()
	return nil
}

func (uc *CatalogUsecase) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := uc.repo.UpdateCategory(ctx, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	uc.invalidateTaxonomy()
	uc.cache.DeletePrefix(keyCarSlugPrefix)
	uc.cache.DeletePrefix(keyPartSlugPrefix)
	return nil
}

// DeleteCategory leaves referencing items uncategorised.
func (uc *CatalogUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := uc.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	uc.invalidateTaxonomy()
	return nil
}

// --- Inventory ---

type StockAdjustment struct {
	ItemType string `json:"itemType"`
	ItemID   string `json:"itemId"`
	Delta    int    `json:"delta"`
	Reason   string `json:"reason"`
}

// AdjustStock applies a manual stock change and records it. Stock never goes negative.
func (uc *CatalogUsecase) AdjustStock(ctx context.Context, actorID string, adj StockAdjustment) (*domain.InventoryLog, error) {
	if !domain.IsValidItemType(adj.ItemType) {
		return nil, fmt.Errorf("%w: itemType must be car or part", domain.ErrInvalidInput)
	}
	if adj.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", domain.ErrInvalidInput)
	}
	reason := strings.TrimSpace(adj.Reason)
	if reason == "" {
		reason = domain.StockReasonAdjustment
	}

	entry := &domain.InventoryLog{
		ItemType: adj.ItemType,
		ItemID:   adj.ItemID,
		Delta:    adj.Delta,
		Reason:   reason,
	}
	if actorID != "" {
		entry.CreatedBy = &actorID
	}

	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		stock, err := uc.repo.AdjustStock(ctx, adj.ItemType, adj.ItemID, adj.Delta)
		if err != nil {
			return err
		}
		entry.StockAfter = stock
		return uc.repo.CreateInventoryLog(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	uc.invalidateItem(adj.ItemType)
	logger.WithContext(ctx).Info().
		Str("item_type", adj.ItemType).
		Str("item_id", adj.ItemID).
		Int("delta", adj.Delta).
		Int("stock_after", entry.StockAfter).
		Msg("Stock adjusted")
	return entry, nil
}

func (uc *CatalogUsecase) GetInventoryLogs(ctx context.Context, itemType, id string, limit int) ([]domain.InventoryLog, error) {
	if !domain.IsValidItemType(itemType) {
		return nil, fmt.Errorf("%w: itemType must be car or part", domain.ErrInvalidInput)
	}
	if limit < 1 || limit > catalogMaxLimit {
		limit = 50
	}
	return uc.repo.GetInventoryLogs(ctx, itemType, id, limit)
}

func (uc *CatalogUsecase) logInitialStock(ctx context.Context, actorID, itemType, id string, stock int) error {
	if stock == 0 {
		return nil
	}
	entry := &domain.InventoryLog{
		ItemType:   itemType,
		ItemID:     id,
		Delta:      stock,
		StockAfter: stock,
		Reason:     domain.StockReasonAdjustment,
	}
	if actorID != "" {
		entry.CreatedBy = &actorID
	}
	return uc.repo.CreateInventoryLog(ctx, entry)
}

// withUniqueSlug retries create with a random suffix when the slug is already taken.
func (uc *CatalogUsecase) withUniqueSlug(base string, create func(slug string) error) error {
	slug := base
	var err error
	for i := 0; i < slugAttempts; i++ {
		err = create(slug)
		if !isSlugConflict(err) {
			return err
		}
		slug = base + "-" + strings.ToLower(utils.GenerateUUID()[:6])
	}
	return err
}

func isSlugConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict) && strings.Contains(err.Error(), "slug")
}

func (uc *CatalogUsecase) invalidateItem(itemType string) {
	if itemType == domain.ItemTypeCar {
		uc.cache.DeletePrefix(keyCarSlugPrefix)
	} else {
		uc.cache.DeletePrefix(keyPartSlugPrefix)
	}
	uc.cache.DeletePrefix(keyDashboardPrefix)
}

func (uc *CatalogUsecase) invalidateCatalog() {
	uc.cache.Delete(keySitemap)
	uc.cache.DeletePrefix(keyDashboardPrefix)
}

func (uc *CatalogUsecase) invalidateTaxonomy() {
	uc.cache.Delete(keyBrands)
	uc.cache.DeletePrefix(keyCategoryPrefix)
	uc.cache.Delete(keySitemap)
}
