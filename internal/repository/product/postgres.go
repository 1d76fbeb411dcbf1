package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("product_repo")}
}

const productColumns = `
p.id::text, p.slug, p.brand_id::text, p.name_sr, p.name_en, p.description_sr, p.description_en,
p.category, p.style, p.base_price_cents, p.image_url, p.is_active, p.created_at,
b.id::text, b.name, b.logo_url, b.description, b.is_active, b.created_at`

const variantColumns = `v.id::text, v.product_id::text, v.size, v.sku, v.quantity, v.created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		brand joinedBrand
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.BrandID, &p.NameSr, &p.NameEn, &p.DescriptionSr, &p.DescriptionEn,
		&p.Category, &p.Style, &p.BasePriceCents, &p.ImageURL, &p.IsActive, &p.CreatedAt,
		&brand.id, &brand.name, &brand.logo, &brand.desc, &brand.active, &brand.created,
	)
	if err != nil {
		return nil, err
	}
	p.Brand = brand.brand()
	p.Variants = []domain.Variant{}
	return &p, nil
}

// joinedBrand receives the nullable columns of a LEFT JOIN on brands.
type joinedBrand struct {
	id, name, logo, desc *string
	active               *bool
	created              *time.Time
}

func (b joinedBrand) brand() *domain.Brand {
	if b.id == nil {
		return nil
	}
	out := &domain.Brand{ID: *b.id, IsActive: b.active != nil && *b.active}
	if b.name != nil {
		out.Name = *b.name
	}
	if b.logo != nil {
		out.LogoURL = *b.logo
	}
	if b.desc != nil {
		out.Description = *b.desc
	}
	if b.created != nil {
		out.CreatedAt = *b.created
	}
	return out
}

func scanVariant(row pgx.Row) (*domain.Variant, error) {
	var v domain.Variant
	if err := row.Scan(&v.ID, &v.ProductID, &v.Size, &v.SKU, &v.Quantity, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns products newest first with brand and variants attached.
// A category of "all" does not filter.
func (r *postgresRepo) List(ctx context.Context, opts ListOptions) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if !opts.IncludeInactive {
		where = append(where, "p.is_active")
	}
	if c := opts.Category; c != "" && c != domain.CategoryAll {
		add("p.category = $%d", c)
	}
	if opts.BrandID != "" {
		add("p.brand_id = $%d", opts.BrandID)
	}
	if opts.Style != "" {
		add("p.style = $%d", opts.Style)
	}

	q := `SELECT ` + productColumns + `
FROM products p
LEFT JOIN brands b ON b.id = p.brand_id`
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nORDER BY p.created_at DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	if opts.InStockOnly {
		inStock := products[:0]
		for _, p := range products {
			if p.InStock() {
				inStock = append(inStock, p)
			}
		}
		products = inStock
	}
	r.logger.Debug("list products", zap.Int("count", len(products)), zap.Any("filter", opts.ProductFilter))
	return products, nil
}

func (r *postgresRepo) attachVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+variantColumns+`
FROM product_variants v
WHERE v.product_id = ANY($1::uuid[])
ORDER BY v.created_at, v.size`, ids)
	if err != nil {
		r.logger.Error("load variants", zap.Int("products", len(ids)), zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return err
		}
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, *v)
	}
	return rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+`
FROM products p
LEFT JOIN brands b ON b.id = p.brand_id
WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get product", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	products := []domain.Product{*p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (slug, brand_id, name_sr, name_en, description_sr, description_en, category, style, base_price_cents, image_url, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id::text`
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.Slug, in.BrandID, in.NameSr, in.NameEn, in.DescriptionSr, in.DescriptionEn,
		in.Category, in.Style, in.BasePriceCents, in.ImageURL, in.IsActive,
	).Scan(&id)
	if err != nil {
		r.logger.Error("create product", zap.String("slug", in.Slug), zap.Error(err))
		return nil, db.MapConstraint(err)
	}
	r.logger.Info("product created", zap.String("id", id), zap.String("slug", in.Slug))
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products SET
    slug = $2, brand_id = $3, name_sr = $4, name_en = $5, description_sr = $6, description_en = $7,
    category = $8, style = $9, base_price_cents = $10, image_url = $11, is_active = $12
WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		in.ID, in.Slug, in.BrandID, in.NameSr, in.NameEn, in.DescriptionSr, in.DescriptionEn,
		in.Category, in.Style, in.BasePriceCents, in.ImageURL, in.IsActive,
	)
	if err != nil {
		r.logger.Error("update product", zap.String("id", in.ID), zap.Error(err))
		return nil, db.MapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, in.ID)
}

// UpsertBySlug inserts or refreshes a product keyed by slug. Used by the seed
// and import tools.
func (r *postgresRepo) UpsertBySlug(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (slug, brand_id, name_sr, name_en, description_sr, description_en, category, style, base_price_cents, image_url, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (slug) DO UPDATE SET
    brand_id = EXCLUDED.brand_id,
    name_sr = EXCLUDED.name_sr,
    name_en = EXCLUDED.name_en,
    description_sr = EXCLUDED.description_sr,
    description_en = EXCLUDED.description_en,
    category = EXCLUDED.category,
    style = EXCLUDED.style,
    base_price_cents = EXCLUDED.base_price_cents,
    image_url = EXCLUDED.image_url,
    is_active = EXCLUDED.is_active
RETURNING id::text`
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.Slug, in.BrandID, in.NameSr, in.NameEn, in.DescriptionSr, in.DescriptionEn,
		in.Category, in.Style, in.BasePriceCents, in.ImageURL, in.IsActive,
	).Scan(&id)
	if err != nil {
		r.logger.Error("upsert product", zap.String("slug", in.Slug), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product upserted", zap.String("id", id), zap.String("slug", in.Slug))
	return r.GetByID(ctx, id)
}

// Deactivate hides a product from the storefront. Rows are never deleted so
// order history keeps resolving.
func (r *postgresRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("deactivate product", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("product deactivated", zap.String("id", id))
	return nil
}

func (r *postgresRepo) CreateVariant(ctx context.Context, in domain.Variant) (*domain.Variant, error) {
	const q = `
INSERT INTO product_variants AS v (product_id, size, sku, quantity)
VALUES ($1, $2, $3, $4)
RETURNING ` + variantColumns
	v, err := scanVariant(r.pool.QueryRow(ctx, q, in.ProductID, in.Size, in.SKU, in.Quantity))
	if err != nil {
		r.logger.Error("create variant", zap.String("product_id", in.ProductID), zap.String("size", in.Size), zap.Error(err))
		return nil, db.MapConstraint(err)
	}
	return v, nil
}

func (r *postgresRepo) UpdateVariant(ctx context.Context, in domain.Variant) (*domain.Variant, error) {
	const q = `
UPDATE product_variants AS v SET size = $2, sku = $3, quantity = $4
WHERE v.id = $1
RETURNING ` + variantColumns
	v, err := scanVariant(r.pool.QueryRow(ctx, q, in.ID, in.Size, in.SKU, in.Quantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("update variant", zap.String("id", in.ID), zap.Error(err))
		return nil, db.MapConstraint(err)
	}
	return v, nil
}

// UpsertVariant inserts or updates the variant for (product, size).
func (r *postgresRepo) UpsertVariant(ctx context.Context, in domain.Variant) (*domain.Variant, error) {
	const q = `
INSERT INTO product_variants AS v (product_id, size, sku, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id, size) DO UPDATE SET sku = EXCLUDED.sku, quantity = EXCLUDED.quantity
RETURNING ` + variantColumns
	v, err := scanVariant(r.pool.QueryRow(ctx, q, in.ProductID, in.Size, in.SKU, in.Quantity))
	if err != nil {
		r.logger.Error("upsert variant", zap.String("product_id", in.ProductID), zap.String("size", in.Size), zap.Error(err))
		return nil, db.MapConstraint(err)
	}
	return v, nil
}

func (r *postgresRepo) SetStock(ctx context.Context, variantID string, quantity int) (*domain.Variant, error) {
	const q = `
UPDATE product_variants AS v SET quantity = $2
WHERE v.id = $1
RETURNING ` + variantColumns
	v, err := scanVariant(r.pool.QueryRow(ctx, q, variantID, quantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("set stock", zap.String("variant_id", variantID), zap.Int("quantity", quantity), zap.Error(err))
		return nil, err
	}
	r.logger.Info("stock set", zap.String("variant_id", variantID), zap.Int("quantity", quantity))
	return v, nil
}

// LowStock lists variants of active products with quantity <= threshold,
// lowest first.
func (r *postgresRepo) LowStock(ctx context.Context, threshold int) ([]domain.StockAlert, error) {
	q := `SELECT ` + variantColumns + `, ` + productColumns + `
FROM product_variants v
JOIN products p ON p.id = v.product_id
LEFT JOIN brands b ON b.id = p.brand_id
WHERE v.quantity <= $1 AND p.is_active
ORDER BY v.quantity, p.name_sr, v.size`
	rows, err := r.pool.Query(ctx, q, threshold)
	if err != nil {
		r.logger.Error("low stock", zap.Int("threshold", threshold), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.StockAlert
	for rows.Next() {
		var (
			a     domain.StockAlert
			brand joinedBrand
		)
		err := rows.Scan(
			&a.Variant.ID, &a.Variant.ProductID, &a.Variant.Size, &a.Variant.SKU, &a.Variant.Quantity, &a.Variant.CreatedAt,
			&a.Product.ID, &a.Product.Slug, &a.Product.BrandID, &a.Product.NameSr, &a.Product.NameEn,
			&a.Product.DescriptionSr, &a.Product.DescriptionEn, &a.Product.Category, &a.Product.Style,
			&a.Product.BasePriceCents, &a.Product.ImageURL, &a.Product.IsActive, &a.Product.CreatedAt,
			&brand.id, &brand.name, &brand.logo, &brand.desc, &brand.active, &brand.created,
		)
		if err != nil {
			return nil, err
		}
		a.Product.Brand = brand.brand()
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("low stock", zap.Int("threshold", threshold), zap.Int("count", len(alerts)))
	return alerts, nil
}
