package postgres

import (
	"context"
	"fmt"

	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
)

type orderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderSelect = `
	SELECT o.id, o.order_number, o.user_id, u.email, o.status, o.payment_status, o.payment_method,
		o.subtotal, o.shipping_fee, o.tax, o.total, o.shipping_address, o.notes, o.cancel_reason,
		o.created_at, o.updated_at
	FROM orders o
	JOIN users u ON u.id = o.user_id`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o    domain.Order
		addr []byte
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerEmail, &o.Status, &o.PaymentStatus,
		&o.PaymentMethod, &o.Subtotal, &o.ShippingFee, &o.Tax, &o.Total, &addr, &o.Notes,
		&o.CancelReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			logger.Get().Warn().Err(err).Str("order_id", o.ID).Msg("Corrupt shipping address")
		}
	}
	o.Items = []domain.OrderItem{}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	db := conn(ctx, r.db)

	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	err = db.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, status, payment_status, payment_method,
			subtotal, shipping_fee, tax, total, shipping_address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		o.OrderNumber, o.UserID, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.Subtotal, o.ShippingFee, o.Tax, o.Total, addr, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if err := db.QueryRow(ctx, `
			INSERT INTO order_items (order_id, item_type, item_id, name, unit_price, quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			o.ID, item.ItemType, item.ItemID, item.Name, item.UnitPrice, item.Quantity, item.LineTotal,
		).Scan(&item.ID); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate locks the order row until the surrounding transaction ends.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return r.get(ctx, id, true)
}

func (r *orderRepository) get(ctx context.Context, id string, lock bool) (*domain.Order, error) {
	db := conn(ctx, r.db)

	query := orderSelect + ` WHERE o.id = $1`
	if lock {
		query += ` FOR UPDATE OF o`
	}
	o, err := scanOrder(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `
		SELECT id, order_id, item_type, item_id, name, unit_price, quantity, line_total
		FROM order_items WHERE order_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemType, &it.ItemID, &it.Name,
			&it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func orderWhere(f domain.OrderFilter) *where {
	w := &where{}
	if f.UserID != "" {
		w.add("o.user_id = $%d", f.UserID)
	}
	if f.Status != "" {
		w.add("o.status = $%d", f.Status)
	}
	if f.PaymentStatus != "" {
		w.add("o.payment_status = $%d", f.PaymentStatus)
	}
	if f.Search != "" {
		w.add("(o.order_number ILIKE $%d OR u.email ILIKE $%d)", likePattern(f.Search))
	}
	if f.From != nil {
		w.add("o.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("o.created_at < $%d", *f.To)
	}
	return w
}

// GetAll returns order headers without items.
func (r *orderRepository) GetAll(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	db := conn(ctx, r.db)
	w := orderWhere(f)

	var total int64
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id `+w.String(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}

	n := w.next()
	rows, err := db.Query(ctx,
		fmt.Sprintf(`%s %s ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`, orderSelect, w.String(), n, n+1),
		append(w.args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, f.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, status string, cancelReason *string) error {
	return expectOne(conn(ctx, r.db).Exec(ctx, `
		UPDATE orders SET status = $2, cancel_reason = COALESCE($3, cancel_reason), updated_at = NOW()
		WHERE id = $1`, id, status, cancelReason))
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, status))
}

func (r *orderRepository) CreateHistory(ctx context.Context, h *domain.OrderHistory) error {
	field := h.Field
	if field == "" {
		field = domain.HistoryFieldStatus
	}
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO order_history (order_id, field, previous_status, new_status, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		h.OrderID, field, h.PreviousStatus, h.NewStatus, h.Reason, nullIfEmpty(h.CreatedBy),
	).Scan(&h.ID, &h.CreatedAt))
}

func (r *orderRepository) GetHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT h.id, h.order_id, h.field, h.previous_status, h.new_status, h.reason, h.created_by,
			NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''),
			h.created_at
		FROM order_history h
		LEFT JOIN users u ON u.id = h.created_by
		WHERE h.order_id = $1
		ORDER BY h.created_at`, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	history := []domain.OrderHistory{}
	for rows.Next() {
		var h domain.OrderHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Field, &h.PreviousStatus, &h.NewStatus, &h.Reason,
			&h.CreatedBy, &h.CreatedName, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
