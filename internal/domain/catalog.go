package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Country   string    `json:"country"`
	LogoURL   string    `json:"logoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Kind        string    `json:"kind"` // car | part
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Car struct {
	ID           string           `json:"id"`
	BrandID      string           `json:"brandId"`
	BrandName    string           `json:"brandName"`
	BrandSlug    string           `json:"brandSlug"`
	CategoryID   *string          `json:"categoryId"`
	CategoryName string           `json:"categoryName,omitempty"`
	Model        string           `json:"model"`
	Slug         string           `json:"slug"`
	Year         int              `json:"year"`
	Price        decimal.Decimal  `json:"price"`
	SalePrice    *decimal.Decimal `json:"salePrice"`
	Mileage      int              `json:"mileage"`
	Condition    string           `json:"condition"`
	FuelType     string           `json:"fuelType"`
	Transmission string           `json:"transmission"`
	BodyType     string           `json:"bodyType"`
	Color        string           `json:"color"`
	Engine       string           `json:"engine"`
	VIN          string           `json:"vin"`
	Description  string           `json:"description"`
	Images       []string         `json:"images"`
	Stock        int              `json:"stock"`
	IsFeatured   bool             `json:"isFeatured"`
	IsActive     bool             `json:"isActive"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Title is the display name, e.g. "2021 Toyota Corolla".
func (c *Car) Title() string {
	if c.BrandName == "" {
		return fmt.Sprintf("%d %s", c.Year, c.Model)
	}
	return fmt.Sprintf("%d %s %s", c.Year, c.BrandName, c.Model)
}

func (c *Car) EffectivePrice() decimal.Decimal {
	return EffectivePrice(c.Price, c.SalePrice)
}

type CarPart struct {
	ID               string           `json:"id"`
	BrandID          *string          `json:"brandId"`
	BrandName        string           `json:"brandName,omitempty"`
	CategoryID       *string          `json:"categoryId"`
	CategoryName     string           `json:"categoryName,omitempty"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	SKU              string           `json:"sku"`
	Description      string           `json:"description"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice"`
	Stock            int              `json:"stock"`
	CompatibleModels []string         `json:"compatibleModels"`
	Images           []string         `json:"images"`
	IsActive         bool             `json:"isActive"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (p *CarPart) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Price, p.SalePrice)
}

// CatalogItem is the unified view over cars and parts used by search, cart and dashboards.
type CatalogItem struct {
	ItemType  string           `json:"itemType"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice"`
	Image     string           `json:"image"`
	Stock     int              `json:"stock"`
	IsActive  bool             `json:"isActive"`
}

func (i *CatalogItem) EffectivePrice() decimal.Decimal {
	return EffectivePrice(i.Price, i.SalePrice)
}

type InventoryLog struct {
	ID         string    `json:"id"`
	ItemType   string    `json:"itemType"`
	ItemID     string    `json:"itemId"`
	Delta      int       `json:"delta"`
	StockAfter int       `json:"stockAfter"`
	Reason     string    `json:"reason"`
	OrderID    *string   `json:"orderId"`
	CreatedBy  *string   `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Car sort keys
const (
	SortNewest     = "newest"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortYearDesc   = "year_desc"
	SortMileageAsc = "mileage_asc"
)

type CarFilter struct {
	Brand        string // slug
	Category     string // slug
	Condition    string
	FuelType     string
	Transmission string
	BodyType     string
	YearMin      int
	YearMax      int
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	MileageMax   int
	Query        string
	Featured     *bool
	Sort         string
	Page         int
	Limit        int

	IncludeInactive bool // admin listings
}

type PartFilter struct {
	Brand           string
	Category        string
	CompatibleModel string
	PriceMin        *decimal.Decimal
	PriceMax        *decimal.Decimal
	InStockOnly     bool
	Query           string
	Sort            string
	Page            int
	Limit           int

	IncludeInactive bool
}

type SitemapEntry struct {
	ItemType  string
	Slug      string
	UpdatedAt time.Time
}

type CatalogRepository interface {
	// Brands & Categories
	GetBrands(ctx context.Context) ([]Brand, error)
	GetBrandByID(ctx context.Context, id string) (*Brand, error)
	CreateBrand(ctx context.Context, brand *Brand) error
	UpdateBrand(ctx context.Context, brand *Brand) error
	DeleteBrand(ctx context.Context, id string) error
	GetCategories(ctx context.Context, kind string) ([]Category, error)
	GetCategoryByID(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Cars
	GetCars(ctx context.Context, filter CarFilter) ([]Car, int64, error)
	GetCarBySlug(ctx context.Context, slug string) (*Car, error)
	GetCarByID(ctx context.Context, id string) (*Car, error)
	CreateCar(ctx context.Context, car *Car) error
	UpdateCar(ctx context.Context, car *Car) error
	SetCarActive(ctx context.Context, id string, active bool) error

	// Parts
	GetParts(ctx context.Context, filter PartFilter) ([]CarPart, int64, error)
	GetPartBySlug(ctx context.Context, slug string) (*CarPart, error)
	GetPartByID(ctx context.Context, id string) (*CarPart, error)
	CreatePart(ctx context.Context, part *CarPart) error
	UpdatePart(ctx context.Context, part *CarPart) error
	SetPartActive(ctx context.Context, id string, active bool) error

	// Unified
	GetItem(ctx context.Context, itemType, id string) (*CatalogItem, error)
	Search(ctx context.Context, query string, limit, offset int) ([]CatalogItem, int64, error)
	GetSitemapEntries(ctx context.Context) ([]SitemapEntry, error)

	// Inventory. AdjustStock is atomic and returns ErrInsufficientStock
	// instead of letting stock go negative.
	AdjustStock(ctx context.Context, itemType, id string, delta int) (int, error)
	CreateInventoryLog(ctx context.Context, log *InventoryLog) error
	GetInventoryLogs(ctx context.Context, itemType, id string, limit int) ([]InventoryLog, error)
}

type SearchUsecase interface {
	Search(ctx context.Context, query string, page, limit int) ([]CatalogItem, Pagination, error)
}
