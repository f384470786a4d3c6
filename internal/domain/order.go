package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderFilter struct {
	Page          int
	Limit         int
	UserID        string
	Status        string
	PaymentStatus string
	Search        string // order number or customer email
	From          *time.Time
	To            *time.Time
}

// --- Order Entities ---

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Missing returns the names of required fields that are blank.
func (a ShippingAddress) Missing() []string {
	var missing []string
	for _, f := range [...]struct{ name, value string }{
		{"fullName", a.FullName},
		{"phone", a.Phone},
		{"line1", a.Line1},
		{"city", a.City},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	CustomerEmail   string          `json:"customerEmail"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Notes           string          `json:"notes"`
	CancelReason    *string         `json:"cancelReason"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ItemType  string          `json:"itemType"`
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`      // Snapshot at time of purchase
	UnitPrice decimal.Decimal `json:"unitPrice"` // Price at time of purchase
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// History fields
const (
	HistoryFieldStatus  = "status"
	HistoryFieldPayment = "payment_status"
)

type OrderHistory struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	Field          string    `json:"field"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason"`
	CreatedBy      *string   `json:"createdBy"`             // UserID
	CreatedName    *string   `json:"createdName,omitempty"` // Enriched
	CreatedAt      time.Time `json:"createdAt"`
}

// --- Interfaces ---

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// GetByIDForUpdate is GetByID holding a row lock; call it inside TransactionManager.Do.
	GetByIDForUpdate(ctx context.Context, id string) (*Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id, status string, cancelReason *string) error
	UpdatePaymentStatus(ctx context.Context, id, status string) error

	CreateHistory(ctx context.Context, history *OrderHistory) error
	GetHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
}
