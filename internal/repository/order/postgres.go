package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("order_repo")}
}

const orderColumns = `id::text, customer_name, phone, address, city, note, total_cents, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.Phone, &o.Address, &o.City, &o.Note, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Items = []domain.OrderItem{}
	return &o, nil
}

// Create stores the header and all items atomically. Either both are
// committed or neither is.
func (r *postgresRepo) Create(ctx context.Context, header domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	status := header.Status
	if status == "" {
		status = domain.OrderStatusNew
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (customer_name, phone, address, city, note, total_cents, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+orderColumns,
		header.CustomerName, header.Phone, header.Address, header.City, header.Note, header.TotalCents, status,
	))
	if err != nil {
		r.logger.Error("insert order", zap.String("customer", header.CustomerName), zap.Error(err))
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range items {
		stored := item
		stored.OrderID = order.ID
		err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, variant_id, quantity, price_at_purchase_cents, name, size)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)
RETURNING id::text`,
			order.ID, item.VariantID, item.Quantity, item.PriceAtPurchaseCents, item.Name, item.Size,
		).Scan(&stored.ID)
		if err != nil {
			r.logger.Error("insert order item", zap.String("order_id", order.ID), zap.String("variant_id", item.VariantID), zap.Error(err))
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		order.Items = append(order.Items, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	r.logger.Info("order created", zap.String("id", order.ID), zap.Int("items", len(order.Items)), zap.Int64("total_cents", order.TotalCents))
	return order, nil
}

// List returns orders newest first with items, variants and products.
func (r *postgresRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		add("status = ANY($%d)", filter.Statuses)
	}
	if !filter.From.IsZero() {
		add("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("created_at <= $%d", filter.To)
	}

	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, r.pool, orders); err != nil {
		return nil, err
	}
	r.logger.Debug("list orders", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.get(ctx, r.pool, id, "")
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *postgresRepo) get(ctx context.Context, q querier, id, lock string) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`+lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get order", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	orders := []domain.Order{*o}
	if err := r.attachItems(ctx, q, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) attachItems(ctx context.Context, q querier, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := q.Query(ctx, `
SELECT oi.id::text, oi.order_id::text, COALESCE(oi.variant_id::text, ''), oi.quantity, oi.price_at_purchase_cents, oi.name, oi.size,
       v.id::text, v.size, v.sku, v.quantity, v.created_at,
       p.id::text, p.slug, p.name_sr, p.name_en, p.category, p.base_price_cents, p.image_url, p.is_active, p.created_at
FROM order_items oi
LEFT JOIN product_variants v ON v.id = oi.variant_id
LEFT JOIN products p ON p.id = v.product_id
WHERE oi.order_id = ANY($1::uuid[])
ORDER BY oi.order_id, oi.id`, ids)
	if err != nil {
		r.logger.Error("load order items", zap.Int("orders", len(ids)), zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    domain.OrderItem
			variant joinedVariant
			product joinedProduct
		)
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.VariantID, &item.Quantity, &item.PriceAtPurchaseCents, &item.Name, &item.Size,
			&variant.id, &variant.size, &variant.sku, &variant.quantity, &variant.created,
			&product.id, &product.slug, &product.nameSr, &product.nameEn, &product.category, &product.price, &product.image, &product.active, &product.created,
		)
		if err != nil {
			return err
		}
		item.Variant = variant.variant(product.id)
		item.Product = product.product()
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

// UpdateStatus moves an order to status. Entering confirmed from any other
// status decrements each item's variant stock with a conditional update; if
// any variant lacks stock the whole change is rolled back with
// domain.ErrInsufficientStock.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin status tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := r.get(ctx, tx, id, " FOR UPDATE")
	if err != nil {
		return nil, err
	}

	if status == domain.OrderStatusConfirmed && current.Status != domain.OrderStatusConfirmed {
		for _, item := range current.Items {
			if item.VariantID == "" {
				continue
			}
			tag, err := tx.Exec(ctx, `
UPDATE product_variants SET quantity = quantity - $1
WHERE id = $2 AND quantity >= $1`, item.Quantity, item.VariantID)
			if err != nil {
				r.logger.Error("decrement stock", zap.String("order_id", id), zap.String("variant_id", item.VariantID), zap.Error(err))
				return nil, fmt.Errorf("decrement stock: %w", err)
			}
			if tag.RowsAffected() == 0 {
				metrics.StockDecrementConflictsTotal.Inc()
				r.logger.Warn("insufficient stock on confirm",
					zap.String("order_id", id),
					zap.String("variant_id", item.VariantID),
					zap.Int("quantity", item.Quantity),
				)
				return nil, fmt.Errorf("variant %s: %w", item.VariantID, domain.ErrInsufficientStock)
			}
		}
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, status, now); err != nil {
		r.logger.Error("update order status", zap.String("id", id), zap.String("status", status), zap.Error(err))
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status: %w", err)
	}

	r.logger.Info("order status updated", zap.String("id", id), zap.String("from", current.Status), zap.String("to", status))
	current.Status = status
	current.UpdatedAt = now
	return current, nil
}

type joinedVariant struct {
	id, size, sku *string
	quantity      *int
	created       *time.Time
}

func (v joinedVariant) variant(productID *string) *domain.Variant {
	if v.id == nil {
		return nil
	}
	out := &domain.Variant{ID: *v.id}
	if productID != nil {
		out.ProductID = *productID
	}
	if v.size != nil {
		out.Size = *v.size
	}
	if v.sku != nil {
		out.SKU = *v.sku
	}
	if v.quantity != nil {
		out.Quantity = *v.quantity
	}
	if v.created != nil {
		out.CreatedAt = *v.created
	}
	return out
}

type joinedProduct struct {
	id, slug, nameSr, nameEn, category, image *string
	price                                     *int64
	active                                    *bool
	created                                   *time.Time
}

func (p joinedProduct) product() *domain.Product {
	if p.id == nil {
		return nil
	}
	out := &domain.Product{ID: *p.id}
	if p.slug != nil {
		out.Slug = *p.slug
	}
	if p.nameSr != nil {
		out.NameSr = *p.nameSr
	}
	if p.nameEn != nil {
		out.NameEn = *p.nameEn
	}
	if p.category != nil {
		out.Category = *p.category
	}
	if p.image != nil {
		out.ImageURL = *p.image
	}
	if p.price != nil {
		out.BasePriceCents = *p.price
	}
	if p.active != nil {
		out.IsActive = *p.active
	}
	if p.created != nil {
		out.CreatedAt = *p.created
	}
	return out
}
