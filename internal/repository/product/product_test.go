package product

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

func TestPostgres_ListFiltersAndAttachesVariants(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	repo := NewPostgres(pool, nil)

	var brandID string
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO brands (name) VALUES ('Nordic') RETURNING id::text`).Scan(&brandID))

	shirt, err := repo.Create(ctx, domain.Product{Slug: "shirt", BrandID: &brandID, NameSr: "Košulja", NameEn: "Shirt", Category: "shirts", Style: "casual", BasePriceCents: 2000, IsActive: true})
	require.NoError(t, err)
	hat, err := repo.Create(ctx, domain.Product{Slug: "cap", NameSr: "Kapa", Category: "hats", BasePriceCents: 900, IsActive: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Product{Slug: "old", NameSr: "Staro", Category: "shirts", BasePriceCents: 100, IsActive: false})
	require.NoError(t, err)

	_, err = repo.CreateVariant(ctx, domain.Variant{ProductID: shirt.ID, Size: "M", SKU: "NOR-KOS-M-0001", Quantity: 5})
	require.NoError(t, err)
	_, err = repo.CreateVariant(ctx, domain.Variant{ProductID: hat.ID, Size: "UNI", SKU: "KAP-UNI-0001", Quantity: 0})
	require.NoError(t, err)

	all, err := repo.List(ctx, ListOptions{ProductFilter: domain.ProductFilter{Category: "all"}})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	shirts, err := repo.List(ctx, ListOptions{ProductFilter: domain.ProductFilter{Category: "shirts"}})
	require.NoError(t, err)
	require.Len(t, shirts, 1)
	assert.Equal(t, "shirt", shirts[0].Slug)
	require.NotNil(t, shirts[0].Brand)
	assert.Equal(t, "Nordic", shirts[0].Brand.Name)
	assert.Len(t, shirts[0].Variants, 1)

	inStock, err := repo.List(ctx, ListOptions{ProductFilter: domain.ProductFilter{InStockOnly: true}})
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, shirt.ID, inStock[0].ID)

	admin, err := repo.List(ctx, ListOptions{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, admin, 3)
}

func TestPostgres_CreateConflictAndDeactivate(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	repo := NewPostgres(pool, nil)

	p, err := repo.Create(ctx, domain.Product{Slug: "tee", NameSr: "Majica", BasePriceCents: 1500, IsActive: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.Product{Slug: "tee", NameSr: "Druga", BasePriceCents: 1, IsActive: true})
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, repo.Deactivate(ctx, p.ID))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, repo.Deactivate(ctx, "00000000-0000-0000-0000-000000000000"), domain.ErrNotFound)
}

func TestPostgres_UpsertAndStock(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	repo := NewPostgres(pool, nil)

	p, err := repo.UpsertBySlug(ctx, domain.Product{Slug: "hoodie", NameSr: "Duks", BasePriceCents: 4000, IsActive: true})
	require.NoError(t, err)
	again, err := repo.UpsertBySlug(ctx, domain.Product{Slug: "hoodie", NameSr: "Duks 2", BasePriceCents: 4500, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, int64(4500), again.BasePriceCents)

	v, err := repo.UpsertVariant(ctx, domain.Variant{ProductID: p.ID, Size: "L", SKU: "DUK-L-1", Quantity: 2})
	require.NoError(t, err)
	v2, err := repo.UpsertVariant(ctx, domain.Variant{ProductID: p.ID, Size: "L", SKU: "DUK-L-1", Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, v.ID, v2.ID)
	assert.Equal(t, 7, v2.Quantity)

	_, err = repo.SetStock(ctx, v.ID, 1)
	require.NoError(t, err)

	alerts, err := repo.LowStock(ctx, 3)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "hoodie", alerts[0].Product.Slug)
	assert.Equal(t, 1, alerts[0].Variant.Quantity)

	_, err = repo.SetStock(ctx, "00000000-0000-0000-0000-000000000000", 1)
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
