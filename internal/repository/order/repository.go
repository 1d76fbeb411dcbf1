package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, header domain.Order, items []domain.OrderItem) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus sets the status and, on the transition into confirmed,
	// decrements stock for every item in the same transaction.
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}
