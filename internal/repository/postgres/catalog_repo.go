package postgres

import (
	"context"
	"errors"
	"fmt"

	"cardealer-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type catalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// tableFor maps an item type to its table. Only constant names ever reach SQL.
func tableFor(itemType string) (string, error) {
	switch itemType {
	case domain.ItemTypeCar:
		return "cars", nil
	case domain.ItemTypePart:
		return "car_parts", nil
	}
	return "", fmt.Errorf("%w: unknown item type %q", domain.ErrInvalidInput, itemType)
}

// --- Brands ---

func (r *catalogRepository) GetBrands(ctx context.Context) ([]domain.Brand, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT id, name, slug, country, logo_url, created_at FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := []domain.Brand{}
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Country, &b.LogoURL, &b.CreatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *catalogRepository) GetBrandByID(ctx context.Context, id string) (*domain.Brand, error) {
	var b domain.Brand
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, name, slug, country, logo_url, created_at FROM brands WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Slug, &b.Country, &b.LogoURL, &b.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

func (r *catalogRepository) CreateBrand(ctx context.Context, b *domain.Brand) error {
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO brands (name, slug, country, logo_url) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, b.Name, b.Slug, b.Country, b.LogoURL,
	).Scan(&b.ID, &b.CreatedAt))
}

func (r *catalogRepository) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE brands SET name = $2, slug = $3, country = $4, logo_url = $5 WHERE id = $1`,
		b.ID, b.Name, b.Slug, b.Country, b.LogoURL))
}

func (r *catalogRepository) DeleteBrand(ctx context.Context, id string) error {
	err := expectOne(conn(ctx, r.db).Exec(ctx, `DELETE FROM brands WHERE id = $1`, id))
	if errors.Is(err, domain.ErrInvalidInput) {
		return fmt.Errorf("%w: brand still has cars", domain.ErrConflict)
	}
	return err
}

// --- Categories ---

func (r *catalogRepository) GetCategories(ctx context.Context, kind string) ([]domain.Category, error) {
	var w where
	if kind != "" {
		w.add("kind = $%d", kind)
	}
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT id, name, slug, kind, description, created_at FROM categories `+w.String()+` ORDER BY name`,
		w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Kind, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *catalogRepository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, name, slug, kind, description, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Kind, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *catalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO categories (name, slug, kind, description) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, c.Name, c.Slug, c.Kind, c.Description,
	).Scan(&c.ID, &c.CreatedAt))
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE categories SET name = $2, slug = $3, kind = $4, description = $5 WHERE id = $1`,
		c.ID, c.Name, c.Slug, c.Kind, c.Description))
}

func (r *catalogRepository) DeleteCategory(ctx context.Context, id string) error {
	return expectOne(conn(ctx, r.db).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id))
}

// --- Cars ---

const carSelect = `
	SELECT c.id, c.brand_id, b.name, b.slug, c.category_id, COALESCE(cat.name, ''),
		c.model, c.slug, c.year, c.price, c.sale_price, c.mileage, c.condition, c.fuel_type,
		c.transmission, c.body_type, c.color, c.engine, c.vin, c.description, c.images,
		c.stock, c.is_featured, c.is_active, c.created_at, c.updated_at`

const carFrom = `
	FROM cars c
	JOIN brands b ON b.id = c.brand_id
	LEFT JOIN categories cat ON cat.id = c.category_id`

const carEffectivePrice = `(CASE WHEN c.sale_price > 0 THEN c.sale_price ELSE c.price END)`

func scanCar(row pgx.Row) (*domain.Car, error) {
	var (
		c      domain.Car
		sale   decimal.NullDecimal
		images []byte
	)
	err := row.Scan(&c.ID, &c.BrandID, &c.BrandName, &c.BrandSlug, &c.CategoryID, &c.CategoryName,
		&c.Model, &c.Slug, &c.Year, &c.Price, &sale, &c.Mileage, &c.Condition, &c.FuelType,
		&c.Transmission, &c.BodyType, &c.Color, &c.Engine, &c.VIN, &c.Description, &images,
		&c.Stock, &c.IsFeatured, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	c.SalePrice = nullDecimalPtr(sale)
	c.Images = decodeImages(images)
	return &c, nil
}

func carWhere(f domain.CarFilter) *where {
	w := &where{}
	if !f.IncludeInactive {
		w.raw("c.is_active")
	}
	if f.Brand != "" {
		w.add("b.slug = $%d", f.Brand)
	}
	if f.Category != "" {
		w.add("cat.slug = $%d", f.Category)
	}
	if f.Condition != "" {
		w.add("c.condition = $%d", f.Condition)
	}
	if f.FuelType != "" {
		w.add("c.fuel_type = $%d", f.FuelType)
	}
	if f.Transmission != "" {
		w.add("c.transmission = $%d", f.Transmission)
	}
	if f.BodyType != "" {
		w.add("c.body_type = $%d", f.BodyType)
	}
	if f.YearMin > 0 {
		w.add("c.year >= $%d", f.YearMin)
	}
	if f.YearMax > 0 {
		w.add("c.year <= $%d", f.YearMax)
	}
	if f.PriceMin != nil {
		w.add(carEffectivePrice+" >= $%d", *f.PriceMin)
	}
	if f.PriceMax != nil {
		w.add(carEffectivePrice+" <= $%d", *f.PriceMax)
	}
	if f.MileageMax > 0 {
		w.add("c.mileage <= $%d", f.MileageMax)
	}
	if f.Featured != nil {
		w.add("c.is_featured = $%d", *f.Featured)
	}
	if f.Query != "" {
		w.add("(c.model ILIKE $%d OR b.name ILIKE $%d OR c.description ILIKE $%d)", likePattern(f.Query))
	}
	return w
}

func carOrder(sort string) string {
	switch sort {
	case domain.SortPriceAsc:
		return carEffectivePrice + " ASC, c.created_at DESC"
	case domain.SortPriceDesc:
		return carEffectivePrice + " DESC, c.created_at DESC"
	case domain.SortYearDesc:
		return "c.year DESC, c.created_at DESC"
	case domain.SortMileageAsc:
		return "c.mileage ASC, c.created_at DESC"
	}
	return "c.created_at DESC"
}

func (r *catalogRepository) GetCars(ctx context.Context, f domain.CarFilter) ([]domain.Car, int64, error) {
	db := conn(ctx, r.db)
	w := carWhere(f)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) `+carFrom+` `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Car{}, 0, nil
	}

	n := w.next()
	query := fmt.Sprintf(`%s %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		carSelect, carFrom, w.String(), carOrder(f.Sort), n, n+1)
	rows, err := db.Query(ctx, query, append(w.args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cars := make([]domain.Car, 0, f.Limit)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, err
		}
		cars = append(cars, *c)
	}
	return cars, total, rows.Err()
}

func (r *catalogRepository) GetCarBySlug(ctx context.Context, slug string) (*domain.Car, error) {
	return scanCar(conn(ctx, r.db).QueryRow(ctx, carSelect+carFrom+` WHERE c.slug = $1`, slug))
}

func (r *catalogRepository) GetCarByID(ctx context.Context, id string) (*domain.Car, error) {
	return scanCar(conn(ctx, r.db).QueryRow(ctx, carSelect+carFrom+` WHERE c.id = $1`, id))
}

func (r *catalogRepository) CreateCar(ctx context.Context, c *domain.Car) error {
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO cars (brand_id, category_id, model, slug, year, price, sale_price, mileage,
			condition, fuel_type, transmission, body_type, color, engine, vin, description,
			images, stock, is_featured, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at`,
		c.BrandID, nullIfEmpty(c.CategoryID), c.Model, c.Slug, c.Year, c.Price, c.SalePrice, c.Mileage,
		c.Condition, c.FuelType, c.Transmission, c.BodyType, c.Color, c.Engine, c.VIN, c.Description,
		encodeImages(c.Images), c.Stock, c.IsFeatured, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *catalogRepository) UpdateCar(ctx context.Context, c *domain.Car) error {
	return expectOne(conn(ctx, r.db).Exec(ctx, `
		UPDATE cars SET brand_id = $2, category_id = $3, model = $4, slug = $5, year = $6,
			price = $7, sale_price = $8, mileage = $9, condition = $10, fuel_type = $11,
			transmission = $12, body_type = $13, color = $14, engine = $15, vin = $16,
			description = $17, images = $18, is_featured = $19, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.BrandID, nullIfEmpty(c.CategoryID), c.Model, c.Slug, c.Year,
		c.Price, c.SalePrice, c.Mileage, c.Condition, c.FuelType,
		c.Transmission, c.BodyType, c.Color, c.Engine, c.VIN,
		c.Description, encodeImages(c.Images), c.IsFeatured))
}

func (r *catalogRepository) SetCarActive(ctx context.Context, id string, active bool) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE cars SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}

// --- Parts ---

const partSelect = `
	SELECT p.id, p.brand_id, COALESCE(b.name, ''), p.category_id, COALESCE(cat.name, ''),
		p.name, p.slug, p.sku, p.description, p.price, p.sale_price, p.stock,
		p.compatible_models, p.images, p.is_active, p.created_at, p.updated_at`

const partFrom = `
	FROM car_parts p
	LEFT JOIN brands b ON b.id = p.brand_id
	LEFT JOIN categories cat ON cat.id = p.category_id`

const partEffectivePrice = `(CASE WHEN p.sale_price > 0 THEN p.sale_price ELSE p.price END)`

func scanPart(row pgx.Row) (*domain.CarPart, error) {
	var (
		p      domain.CarPart
		sale   decimal.NullDecimal
		images []byte
	)
	err := row.Scan(&p.ID, &p.BrandID, &p.BrandName, &p.CategoryID, &p.CategoryName,
		&p.Name, &p.Slug, &p.SKU, &p.Description, &p.Price, &sale, &p.Stock,
		&p.CompatibleModels, &images, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	p.SalePrice = nullDecimalPtr(sale)
	p.Images = decodeImages(images)
	if p.CompatibleModels == nil {
		p.CompatibleModels = []string{}
	}
	return &p, nil
}

func partWhere(f domain.PartFilter) *where {
	w := &where{}
	if !f.IncludeInactive {
		w.raw("p.is_active")
	}
	if f.Brand != "" {
		w.add("b.slug = $%d", f.Brand)
	}
	if f.Category != "" {
		w.add("cat.slug = $%d", f.Category)
	}
	if f.CompatibleModel != "" {
		w.add("p.compatible_models @> ARRAY[$%d]::text[]", f.CompatibleModel)
	}
	if f.PriceMin != nil {
		w.add(partEffectivePrice+" >= $%d", *f.PriceMin)
	}
	if f.PriceMax != nil {
		w.add(partEffectivePrice+" <= $%d", *f.PriceMax)
	}
	if f.InStockOnly {
		w.raw("p.stock > 0")
	}
	if f.Query != "" {
		w.add("(p.name ILIKE $%d OR p.sku ILIKE $%d OR p.description ILIKE $%d)", likePattern(f.Query))
	}
	return w
}

func partOrder(sort string) string {
	switch sort {
	case domain.SortPriceAsc:
		return partEffectivePrice + " ASC, p.created_at DESC"
	case domain.SortPriceDesc:
		return partEffectivePrice + " DESC, p.created_at DESC"
	}
	return "p.created_at DESC"
}

func (r *catalogRepository) GetParts(ctx context.Context, f domain.PartFilter) ([]domain.CarPart, int64, error) {
	db := conn(ctx, r.db)
	w := partWhere(f)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) `+partFrom+` `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.CarPart{}, 0, nil
	}

	n := w.next()
	query := fmt.Sprintf(`%s %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		partSelect, partFrom, w.String(), partOrder(f.Sort), n, n+1)
	rows, err := db.Query(ctx, query, append(w.args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	parts := make([]domain.CarPart, 0, f.Limit)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, 0, err
		}
		parts = append(parts, *p)
	}
	return parts, total, rows.Err()
}

func (r *catalogRepository) GetPartBySlug(ctx context.Context, slug string) (*domain.CarPart, error) {
	return scanPart(conn(ctx, r.db).QueryRow(ctx, partSelect+partFrom+` WHERE p.slug = $1`, slug))
}

func (r *catalogRepository) GetPartByID(ctx context.Context, id string) (*domain.CarPart, error) {
	return scanPart(conn(ctx, r.db).QueryRow(ctx, partSelect+partFrom+` WHERE p.id = $1`, id))
}

func (r *catalogRepository) CreatePart(ctx context.Context, p *domain.CarPart) error {
	models := p.CompatibleModels
	if models == nil {
		models = []string{}
	}
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO car_parts (brand_id, category_id, name, slug, sku, description, price,
			sale_price, stock, compatible_models, images, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		nullIfEmpty(p.BrandID), nullIfEmpty(p.CategoryID), p.Name, p.Slug, p.SKU, p.Description, p.Price,
		p.SalePrice, p.Stock, models, encodeImages(p.Images), p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *catalogRepository) UpdatePart(ctx context.Context, p *domain.CarPart) error {
	models := p.CompatibleModels
	if models == nil {
		models = []string{}
	}
	return expectOne(conn(ctx, r.db).Exec(ctx, `
		UPDATE car_parts SET brand_id = $2, category_id = $3, name = $4, slug = $5, sku = $6,
			description = $7, price = $8, sale_price = $9, compatible_models = $10,
			images = $11, updated_at = NOW()
		WHERE id = $1`,
		p.ID, nullIfEmpty(p.BrandID), nullIfEmpty(p.CategoryID), p.Name, p.Slug, p.SKU,
		p.Description, p.Price, p.SalePrice, models,
		encodeImages(p.Images)))
}

func (r *catalogRepository) SetPartActive(ctx context.Context, id string, active bool) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE car_parts SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}

// --- Unified view ---

const catalogItems = `
	WITH items AS (
		SELECT 'car' AS item_type, c.id, (c.year::text || ' ' || b.name || ' ' || c.model) AS name,
			c.slug, c.price, c.sale_price, c.images, c.stock, c.is_active, c.created_at,
			(c.model || ' ' || b.name || ' ' || c.description) AS haystack
		FROM cars c JOIN brands b ON b.id = c.brand_id
		UNION ALL
		SELECT 'part', p.id, p.name, p.slug, p.price, p.sale_price, p.images, p.stock, p.is_active,
			p.created_at,
			(p.name || ' ' || p.sku || ' ' || COALESCE(b.name, '') || ' ' || p.description || ' ' ||
				array_to_string(p.compatible_models, ' '))
		FROM car_parts p LEFT JOIN brands b ON b.id = p.brand_id
	)`

func scanCatalogItem(row pgx.Row) (*domain.CatalogItem, error) {
	var (
		it     domain.CatalogItem
		sale   decimal.NullDecimal
		images []byte
	)
	if err := row.Scan(&it.ItemType, &it.ID, &it.Name, &it.Slug, &it.Price, &sale, &images,
		&it.Stock, &it.IsActive); err != nil {
		return nil, mapError(err)
	}
	it.SalePrice = nullDecimalPtr(sale)
	it.Image = firstImage(images)
	return &it, nil
}

func (r *catalogRepository) GetItem(ctx context.Context, itemType, id string) (*domain.CatalogItem, error) {
	if _, err := tableFor(itemType); err != nil {
		return nil, err
	}
	return scanCatalogItem(conn(ctx, r.db).QueryRow(ctx, catalogItems+`
		SELECT item_type, id, name, slug, price, sale_price, images, stock, is_active
		FROM items WHERE item_type = $1 AND id = $2`, itemType, id))
}

func (r *catalogRepository) Search(ctx context.Context, query string, limit, offset int) ([]domain.CatalogItem, int64, error) {
	db := conn(ctx, r.db)
	pattern := likePattern(query)

	var total int64
	if err := db.QueryRow(ctx, catalogItems+`
		SELECT COUNT(*) FROM items WHERE is_active AND haystack ILIKE $1`, pattern,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.CatalogItem{}, 0, nil
	}

	rows, err := db.Query(ctx, catalogItems+`
		SELECT item_type, id, name, slug, price, sale_price, images, stock, is_active
		FROM items WHERE is_active AND haystack ILIKE $1
		ORDER BY (name ILIKE $1) DESC, created_at DESC
		LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.CatalogItem, 0, limit)
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *it)
	}
	return items, total, rows.Err()
}

func (r *catalogRepository) GetSitemapEntries(ctx context.Context) ([]domain.SitemapEntry, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT 'car', slug, updated_at FROM cars WHERE is_active
		UNION ALL
		SELECT 'part', slug, updated_at FROM car_parts WHERE is_active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.SitemapEntry
	for rows.Next() {
		var e domain.SitemapEntry
		if err := rows.Scan(&e.ItemType, &e.Slug, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- Inventory ---

func (r *catalogRepository) AdjustStock(ctx context.Context, itemType, id string, delta int) (int, error) {
	table, err := tableFor(itemType)
	if err != nil {
		return 0, err
	}
	db := conn(ctx, r.db)

	var stock int
	err = db.QueryRow(ctx, `
		UPDATE `+table+` SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock`, id, delta).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError(err)
	}

	// Distinguish a missing row from a refused decrement.
	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, mapError(err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientStock
}

func (r *catalogRepository) CreateInventoryLog(ctx context.Context, l *domain.InventoryLog) error {
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO inventory_logs (item_type, item_id, delta, stock_after, reason, order_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		l.ItemType, l.ItemID, l.Delta, l.StockAfter, l.Reason, nullIfEmpty(l.OrderID), nullIfEmpty(l.CreatedBy),
	).Scan(&l.ID, &l.CreatedAt))
}

func (r *catalogRepository) GetInventoryLogs(ctx context.Context, itemType, id string, limit int) ([]domain.InventoryLog, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, item_type, item_id, delta, stock_after, reason, order_id, created_by, created_at
		FROM inventory_logs
		WHERE item_type = $1 AND item_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, itemType, id, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	logs := []domain.InventoryLog{}
	for rows.Next() {
		var l domain.InventoryLog
		if err := rows.Scan(&l.ID, &l.ItemType, &l.ItemID, &l.Delta, &l.StockAfter, &l.Reason,
			&l.OrderID, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
