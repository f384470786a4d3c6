package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CustomerDashboard struct {
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	TotalOrders    int64            `json:"totalOrders"`
	LifetimeSpend  decimal.Decimal  `json:"lifetimeSpend"`
	CartItemCount  int              `json:"cartItemCount"`
	RecentOrders   []Order          `json:"recentOrders"`
}

type AdminDashboard struct {
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
	TotalCars      int64            `json:"totalCars"`
	TotalParts     int64            `json:"totalParts"`
	TotalCustomers int64            `json:"totalCustomers"`
	TotalOrders    int64            `json:"totalOrders"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	Revenue        decimal.Decimal  `json:"revenue"`
	LowStock       []CatalogItem    `json:"lowStock"`
	RecentOrders   []Order          `json:"recentOrders"`
	UnreadMessages int64            `json:"unreadMessages"`
}

type CatalogCounts struct {
	Cars  int64
	Parts int64
}

// DashboardRepository holds the aggregate queries behind both dashboards.
// An empty userID means store-wide.
type DashboardRepository interface {
	OrdersByStatus(ctx context.Context, userID string, from, to *time.Time) (map[string]int64, error)
	CustomerSpend(ctx context.Context, userID string) (decimal.Decimal, error)
	CartItemCount(ctx context.Context, userID string) (int, error)
	RecentOrders(ctx context.Context, userID string, limit int) ([]Order, error)

	CatalogCounts(ctx context.Context) (CatalogCounts, error)
	CountCustomers(ctx context.Context) (int64, error)
	Revenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	LowStock(ctx context.Context, threshold, limit int) ([]CatalogItem, error)
	CountUnreadMessages(ctx context.Context) (int64, error)
}
