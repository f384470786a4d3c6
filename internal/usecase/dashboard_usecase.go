package usecase

import (
	"context"
	"fmt"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/cache"

	"golang.org/x/sync/errgroup"
)

const (
	customerRecentOrders = 5
	adminRecentOrders    = 10
	lowStockLimit        = 20
	defaultDashboardDays = 30
)

type DashboardUsecase struct {
	repo              domain.DashboardRepository
	cache             cache.CacheService
	ttl               time.Duration
	lowStockThreshold int
	now               func() time.Time
}

func NewDashboardUsecase(repo domain.DashboardRepository, cache cache.CacheService, cfg *config.Config) *DashboardUsecase {
	return &DashboardUsecase{
		repo:              repo,
		cache:             cache,
		ttl:               cfg.CacheDashboardTTL,
		lowStockThreshold: cfg.LowStockThreshold,
		now:               time.Now,
	}
}

// Customer summarises one user's orders. Order figures are cached; the cart count is always read live.
func (uc *DashboardUsecase) Customer(ctx context.Context, userID string) (*domain.CustomerDashboard, error) {
	cartItems, err := uc.repo.CartItemCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart item count: %w", err)
	}

	key := keyDashboardPrefix + "customer:" + userID
	if val, found := uc.cache.Get(key); found {
		d := *val.(*domain.CustomerDashboard)
		d.CartItemCount = cartItems
		return &d, nil
	}

	d := &domain.CustomerDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := uc.repo.OrdersByStatus(gctx, userID, nil, nil)
		if err != nil {
			return fmt.Errorf("orders by status: %w", err)
		}
		d.OrdersByStatus = counts
		for _, n := range counts {
			d.TotalOrders += n
		}
		return nil
	})
	g.Go(func() error {
		spend, err := uc.repo.CustomerSpend(gctx, userID)
		if err != nil {
			return fmt.Errorf("customer spend: %w", err)
		}
		d.LifetimeSpend = spend
		return nil
	})
	g.Go(func() error {
		orders, err := uc.repo.RecentOrders(gctx, userID, customerRecentOrders)
		if err != nil {
			return fmt.Errorf("recent orders: %w", err)
		}
		d.RecentOrders = orders
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uc.cache.Set(key, d, uc.ttl)
	out := *d
	out.CartItemCount = cartItems
	return &out, nil
}

// Admin reports store-wide figures. Range defaults to the last 30 days and may not exceed a year.
func (uc *DashboardUsecase) Admin(ctx context.Context, from, to *time.Time) (*domain.AdminDashboard, error) {
	end := uc.now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -defaultDashboardDays)
	if from != nil {
		start = *from
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}
	if end.After(start.AddDate(1, 0, 0)) {
		return nil, fmt.Errorf("%w: date range cannot exceed 1 year", domain.ErrInvalidInput)
	}

	key := fmt.Sprintf("%sadmin:%s:%s", keyDashboardPrefix,
		start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
	if val, found := uc.cache.Get(key); found {
		return val.(*domain.AdminDashboard), nil
	}

	d := &domain.AdminDashboard{From: start, To: end}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := uc.repo.CatalogCounts(gctx)
		if err != nil {
			return fmt.Errorf("catalog counts: %w", err)
		}
		d.TotalCars, d.TotalParts = counts.Cars, counts.Parts
		return nil
	})
	g.Go(func() error {
		n, err := uc.repo.CountCustomers(gctx)
		if err != nil {
			return fmt.Errorf("count customers: %w", err)
		}
		d.TotalCustomers = n
		return nil
	})
	g.Go(func() error {
		counts, err := uc.repo.OrdersByStatus(gctx, "", &start, &end)
		if err != nil {
			return fmt.Errorf("orders by status: %w", err)
		}
		d.OrdersByStatus = counts
		for _, n := range counts {
			d.TotalOrders += n
		}
		return nil
	})
	g.Go(func() error {
		revenue, err := uc.repo.Revenue(gctx, start, end)
		if err != nil {
			return fmt.Errorf("revenue: %w", err)
		}
		d.Revenue = revenue
		return nil
	})
	g.Go(func() error {
		items, err := uc.repo.LowStock(gctx, uc.lowStockThreshold, lowStockLimit)
		if err != nil {
			return fmt.Errorf("low stock: %w", err)
		}
		d.LowStock = items
		return nil
	})
	g.Go(func() error {
		orders, err := uc.repo.RecentOrders(gctx, "", adminRecentOrders)
		if err != nil {
			return fmt.Errorf("recent orders: %w", err)
		}
		d.RecentOrders = orders
		return nil
	})
	g.Go(func() error {
		n, err := uc.repo.CountUnreadMessages(gctx)
		if err != nil {
			return fmt.Errorf("unread messages: %w", err)
		}
		d.UnreadMessages = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uc.cache.Set(key, d, uc.ttl)
	return d, nil
}
