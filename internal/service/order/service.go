package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type Repository interface {
	Create(ctx context.Context, header domain.Order, items []domain.OrderItem) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

// StatusNotifier is told about admin status changes. Best-effort.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, order domain.Order, status string) error
}

type Service struct {
	repo          Repository
	notifier      StatusNotifier
	notifyTimeout time.Duration
	logger        *zap.Logger
}

func New(repo Repository, notifier StatusNotifier, logger *zap.Logger) *Service {
	return &Service{
		repo:          repo,
		notifier:      notifier,
		notifyTimeout: 5 * time.Second,
		logger:        logging.OrNop(logger).Named("orders"),
	}
}

// CreateOrder stores a new order with its items.
func (s *Service) CreateOrder(ctx context.Context, header domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	header.Status = domain.OrderStatusNew
	return s.repo.Create(ctx, header, items)
}

func (s *Service) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !domain.ValidOrderStatus(filter.Status) {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus changes the order status. Entering confirmed decrements stock
// and fails with domain.ErrInsufficientStock when any variant is short.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	order, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.logger.Warn("confirmation rejected", zap.String("order_id", id), zap.Error(err))
		}
		return nil, err
	}
	s.notifyStatus(ctx, *order, status)
	return order, nil
}

func (s *Service) notifyStatus(ctx context.Context, order domain.Order, status string) {
	if s.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.StatusChanged(notifyCtx, order, status); err != nil {
		s.logger.Warn("status notification failed", zap.String("order_id", order.ID), zap.String("status", status), zap.Error(err))
	}
}
