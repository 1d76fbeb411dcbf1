package product

import (
	"context"

	"storefront/internal/domain"
)

// ListOptions filters product listings. Admin listings set IncludeInactive.
type ListOptions struct {
	domain.ProductFilter
	IncludeInactive bool
}

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpsertBySlug(ctx context.Context, p domain.Product) (*domain.Product, error)
	Deactivate(ctx context.Context, id string) error

	CreateVariant(ctx context.Context, v domain.Variant) (*domain.Variant, error)
	UpdateVariant(ctx context.Context, v domain.Variant) (*domain.Variant, error)
	UpsertVariant(ctx context.Context, v domain.Variant) (*domain.Variant, error)
	SetStock(ctx context.Context, variantID string, quantity int) (*domain.Variant, error)
	LowStock(ctx context.Context, threshold int) ([]domain.StockAlert, error)
}
