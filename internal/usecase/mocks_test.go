package usecase

import (
	"context"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	memcache "cardealer-backend/internal/infrastructure/cache"
	"cardealer-backend/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenExpiry:     15 * time.Minute,
		RefreshTokenExpiry:    7 * 24 * time.Hour,
		LoginMaxAttempts:      3,
		LoginLockoutWindow:    15 * time.Minute,
		LoginLockoutDuration:  15 * time.Minute,
		MaxCartQuantity:       10,
		FreeShippingThreshold: decimal.NewFromInt(1000),
		FlatShippingFee:       decimal.NewFromInt(50),
		TaxRatePercent:        decimal.NewFromInt(8),
		LowStockThreshold:     3,
		CacheItemTTL:          time.Minute,
		CacheTaxonomyTTL:      time.Minute,
		CacheSitemapTTL:       time.Minute,
		CacheDashboardTTL:     time.Minute,
		FrontendURL:           "https://cars.example.com/",
	}
}

func newTestCache() cache.CacheService {
	return memcache.NewMemoryCache(time.Minute, time.Minute)
}

// fakeTx runs fn inline.
type fakeTx struct{ calls int }

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// --- UserRepository ---

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetAll(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, firstName, lastName, phone string) (*domain.User, error) {
	args := m.Called(ctx, id, firstName, lastName, phone)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockUserRepo) SetRole(ctx context.Context, id, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockUserRepo) SaveSession(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockUserRepo) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *mockUserRepo) RevokeSession(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserRepo) RevokeOtherSessions(ctx context.Context, userID, keepToken string) error {
	return m.Called(ctx, userID, keepToken).Error(0)
}

// --- CatalogRepository ---

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]domain.Brand)
	return b, args.Error(1)
}

func (m *mockCatalogRepo) GetBrandByID(ctx context.Context, id string) (*domain.Brand, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Brand)
	return b, args.Error(1)
}

func (m *mockCatalogRepo) CreateBrand(ctx context.Context, b *domain.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockCatalogRepo) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockCatalogRepo) DeleteBrand(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) GetCategories(ctx context.Context, kind string) ([]domain.Category, error) {
	args := m.Called(ctx, kind)
	c, _ := args.Get(0).([]domain.Category)
	return c, args.Error(1)
}

func (m *mockCatalogRepo) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Category)
	return c, args.Error(1)
}

func (m *mockCatalogRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCatalogRepo) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCatalogRepo) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) GetCars(ctx context.Context, f domain.CarFilter) ([]domain.Car, int64, error) {
	args := m.Called(ctx, f)
	c, _ := args.Get(0).([]domain.Car)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *mockCatalogRepo) GetCarBySlug(ctx context.Context, slug string) (*domain.Car, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(*domain.Car)
	return c, args.Error(1)
}

func (m *mockCatalogRepo) GetCarByID(ctx context.Context, id string) (*domain.Car, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Car)
	return c, args.Error(1)
}

func (m *mockCatalogRepo) CreateCar(ctx context.Context, c *domain.Car) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCatalogRepo) UpdateCar(ctx context.Context, c *domain.Car) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCatalogRepo) SetCarActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockCatalogRepo) GetParts(ctx context.Context, f domain.PartFilter) ([]domain.CarPart, int64, error) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).([]domain.CarPart)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *mockCatalogRepo) GetPartBySlug(ctx context.Context, slug string) (*domain.CarPart, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*domain.CarPart)
	return p, args.Error(1)
}

func (m *mockCatalogRepo) GetPartByID(ctx context.Context, id string) (*domain.CarPart, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.CarPart)
	return p, args.Error(1)
}

func (m *mockCatalogRepo) CreatePart(ctx context.Context, p *domain.CarPart) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockCatalogRepo) UpdatePart(ctx context.Context, p *domain.CarPart) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockCatalogRepo) SetPartActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockCatalogRepo) GetItem(ctx context.Context, itemType, id string) (*domain.CatalogItem, error) {
	args := m.Called(ctx, itemType, id)
	it, _ := args.Get(0).(*domain.CatalogItem)
	return it, args.Error(1)
}

func (m *mockCatalogRepo) Search(ctx context.Context, q string, limit, offset int) ([]domain.CatalogItem, int64, error) {
	args := m.Called(ctx, q, limit, offset)
	it, _ := args.Get(0).([]domain.CatalogItem)
	return it, args.Get(1).(int64), args.Error(2)
}

func (m *mockCatalogRepo) GetSitemapEntries(ctx context.Context) ([]domain.SitemapEntry, error) {
	args := m.Called(ctx)
	e, _ := args.Get(0).([]domain.SitemapEntry)
	return e, args.Error(1)
}

func (m *mockCatalogRepo) AdjustStock(ctx context.Context, itemType, id string, delta int) (int, error) {
	args := m.Called(ctx, itemType, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *mockCatalogRepo) CreateInventoryLog(ctx context.Context, l *domain.InventoryLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockCatalogRepo) GetInventoryLogs(ctx context.Context, itemType, id string, limit int) ([]domain.InventoryLog, error) {
	args := m.Called(ctx, itemType, id, limit)
	l, _ := args.Get(0).([]domain.InventoryLog)
	return l, args.Error(1)
}

// --- CartRepository ---

type mockCartRepo struct{ mock.Mock }

func (m *mockCartRepo) GetByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*domain.Cart)
	return c, args.Error(1)
}

func (m *mockCartRepo) Create(ctx context.Context, c *domain.Cart) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCartRepo) GetItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, cartID)
	it, _ := args.Get(0).([]domain.CartItem)
	return it, args.Error(1)
}

func (m *mockCartRepo) GetItem(ctx context.Context, cartID, itemType, itemID string) (*domain.CartItem, error) {
	args := m.Called(ctx, cartID, itemType, itemID)
	it, _ := args.Get(0).(*domain.CartItem)
	return it, args.Error(1)
}

func (m *mockCartRepo) SetItemQuantity(ctx context.Context, cartID, itemType, itemID string, qty int) error {
	return m.Called(ctx, cartID, itemType, itemID, qty).Error(0)
}

func (m *mockCartRepo) RemoveItem(ctx context.Context, cartID, itemType, itemID string) error {
	return m.Called(ctx, cartID, itemType, itemID).Error(0)
}

func (m *mockCartRepo) Clear(ctx context.Context, cartID string) error {
	return m.Called(ctx, cartID).Error(0)
}

// --- OrderRepository ---

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetAll(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	args := m.Called(ctx, f)
	o, _ := args.Get(0).([]domain.Order)
	return o, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id, status string, cancelReason *string) error {
	return m.Called(ctx, id, status, cancelReason).Error(0)
}

func (m *mockOrderRepo) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockOrderRepo) CreateHistory(ctx context.Context, h *domain.OrderHistory) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockOrderRepo) GetHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	args := m.Called(ctx, orderID)
	h, _ := args.Get(0).([]domain.OrderHistory)
	return h, args.Error(1)
}

// --- Publisher ---

type recordingPublisher struct {
	events []domain.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.OrderEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
