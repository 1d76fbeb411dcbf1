package category

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/migrate"
)

func TestPostgres_CountsActiveProductsOnly(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)

	_, err := pool.Exec(ctx, `
INSERT INTO products (slug, name_sr, category, base_price_cents, is_active) VALUES
    ('a', 'A', 'shirts', 100, TRUE),
    ('b', 'B', 'shirts', 100, TRUE),
    ('c', 'C', 'jeans', 100, TRUE),
    ('d', 'D', 'jeans', 100, FALSE),
    ('e', 'E', '', 100, TRUE)`)
	require.NoError(t, err)

	counts, err := NewPostgres(pool, nil).Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"shirts": 2, "jeans": 1}, counts)
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "connect db")
	t.Cleanup(pool.Close)

	require.NoError(t, migrate.Apply(ctx, pool), "apply migrations")
	_, err = pool.Exec(ctx, `TRUNCATE order_items, orders, product_variants, products, brands CASCADE`)
	require.NoError(t, err, "truncate tables")
	return pool
}
