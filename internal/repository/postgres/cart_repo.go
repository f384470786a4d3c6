package postgres

import (
	"context"

	"cardealer-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type cartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// Create is idempotent per user: a concurrent first access returns the existing cart.
func (r *cartRepository) Create(ctx context.Context, c *domain.Cart) error {
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, created_at, updated_at`, c.UserID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.item_type, ci.item_id, ci.quantity,
		i.name, i.slug, i.images, i.price, i.sale_price, i.stock, i.is_active
	FROM cart_items ci
	JOIN items i ON i.item_type = ci.item_type AND i.id = ci.item_id`

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var (
		it     domain.CartItem
		price  decimal.Decimal
		sale   decimal.NullDecimal
		images []byte
	)
	if err := row.Scan(&it.ID, &it.CartID, &it.ItemType, &it.ItemID, &it.Quantity,
		&it.Name, &it.Slug, &images, &price, &sale, &it.Stock, &it.IsActive); err != nil {
		return nil, mapError(err)
	}
	it.Image = firstImage(images)
	it.UnitPrice = domain.EffectivePrice(price, nullDecimalPtr(sale))
	return &it, nil
}

func (r *cartRepository) GetItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		catalogItems+cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.created_at`, cartID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, itemType, itemID string) (*domain.CartItem, error) {
	return scanCartItem(conn(ctx, r.db).QueryRow(ctx, catalogItems+cartItemSelect+`
		WHERE ci.cart_id = $1 AND ci.item_type = $2 AND ci.item_id = $3`, cartID, itemType, itemID))
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, itemType, itemID string, quantity int) error {
	db := conn(ctx, r.db)
	if _, err := db.Exec(ctx, `
		INSERT INTO cart_items (cart_id, item_type, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, item_type, item_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		cartID, itemType, itemID, quantity); err != nil {
		return mapError(err)
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, itemType, itemID string) error {
	if err := expectOne(conn(ctx, r.db).Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND item_type = $2 AND item_id = $3`,
		cartID, itemType, itemID)); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) Clear(ctx context.Context, cartID string) error {
	if _, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return mapError(err)
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepository) touch(ctx context.Context, cartID string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	return mapError(err)
}
