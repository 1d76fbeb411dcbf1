package brand

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Brand, error)
	GetByID(ctx context.Context, id string) (*domain.Brand, error)
	GetByName(ctx context.Context, name string) (*domain.Brand, error)
	Create(ctx context.Context, b domain.Brand) (*domain.Brand, error)
	Update(ctx context.Context, b domain.Brand) (*domain.Brand, error)
}
