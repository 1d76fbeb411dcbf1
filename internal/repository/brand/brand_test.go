package brand

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_CreateListUpdate(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	repo := NewPostgres(pool, nil)

	zeta, err := repo.Create(ctx, domain.Brand{Name: "Zeta", IsActive: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Brand{Name: "Alfa", IsActive: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Brand{Name: "Hidden", IsActive: false})
	require.NoError(t, err)

	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Alfa", active[0].Name)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	zeta.Description = "Nordic knitwear"
	updated, err := repo.Update(ctx, *zeta)
	require.NoError(t, err)
	assert.Equal(t, "Nordic knitwear", updated.Description)

	byName, err := repo.GetByName(ctx, "zeta")
	require.NoError(t, err)
	assert.Equal(t, zeta.ID, byName.ID)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
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
