package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// --- Cart Entities ---

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Totals    CartTotals `json:"totals"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is a cart line hydrated with the catalog item it points at.
type CartItem struct {
	ID        string          `json:"id"`
	CartID    string          `json:"cartId"`
	ItemType  string          `json:"itemType"`
	ItemID    string          `json:"itemId"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unitPrice"` // Effective price
	LineTotal decimal.Decimal `json:"lineTotal"`
	Stock     int             `json:"stock"`
	IsActive  bool            `json:"isActive"`
}

type CartTotals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Cart, error)
	Create(ctx context.Context, cart *Cart) error
	GetItems(ctx context.Context, cartID string) ([]CartItem, error)
	GetItem(ctx context.Context, cartID, itemType, itemID string) (*CartItem, error)
	// SetItemQuantity inserts or overwrites a line with an absolute quantity.
	SetItemQuantity(ctx context.Context, cartID, itemType, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemType, itemID string) error
	Clear(ctx context.Context, cartID string) error
}
