package postgres

import (
	"context"
	"fmt"
	"time"

	"cardealer-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type dashboardRepository struct {
	db DBTX
}

func NewDashboardRepository(db DBTX) domain.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) OrdersByStatus(ctx context.Context, userID string, from, to *time.Time) (map[string]int64, error) {
	w := orderWhere(domain.OrderFilter{UserID: userID, From: from, To: to})
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT o.status, COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id `+w.String()+` GROUP BY o.status`,
		w.args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	counts := make(map[string]int64, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CustomerSpend sums every order that has not been cancelled.
func (r *dashboardRepository) CustomerSpend(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders
		WHERE user_id = $1 AND status <> $2`, userID, domain.OrderStatusCancelled,
	).Scan(&total)
	return total, mapError(err)
}

func (r *dashboardRepository) CartItemCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COALESCE(SUM(ci.quantity), 0)
		FROM cart_items ci JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1`, userID,
	).Scan(&n)
	return n, mapError(err)
}

func (r *dashboardRepository) RecentOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	w := orderWhere(domain.OrderFilter{UserID: userID})
	rows, err := conn(ctx, r.db).Query(ctx,
		fmt.Sprintf(`%s %s ORDER BY o.created_at DESC LIMIT $%d`, orderSelect, w.String(), w.next()),
		append(w.args, limit)...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *dashboardRepository) CatalogCounts(ctx context.Context) (domain.CatalogCounts, error) {
	var c domain.CatalogCounts
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM cars WHERE is_active),
			(SELECT COUNT(*) FROM car_parts WHERE is_active)`,
	).Scan(&c.Cars, &c.Parts)
	return c, mapError(err)
}

func (r *dashboardRepository) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, domain.RoleCustomer).Scan(&n)
	return n, mapError(err)
}

// Revenue counts paid orders only.
func (r *dashboardRepository) Revenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders
		WHERE payment_status = $1 AND created_at >= $2 AND created_at < $3`,
		domain.PaymentStatusPaid, from, to,
	).Scan(&total)
	return total, mapError(err)
}

func (r *dashboardRepository) LowStock(ctx context.Context, threshold, limit int) ([]domain.CatalogItem, error) {
	rows, err := conn(ctx, r.db).Query(ctx, catalogItems+`
		SELECT item_type, id, name, slug, price, sale_price, images, stock, is_active
		FROM items WHERE is_active AND stock <= $1
		ORDER BY stock, name
		LIMIT $2`, threshold, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := []domain.CatalogItem{}
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *dashboardRepository) CountUnreadMessages(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages WHERE NOT is_read`).Scan(&n)
	return n, mapError(err)
}
