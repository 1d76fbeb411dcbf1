package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

const dashboardListLimit = 5

type Orders interface {
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type Catalog interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	LowStock(ctx context.Context, threshold int) ([]domain.StockAlert, error)
}

type Service struct {
	orders    Orders
	catalog   Catalog
	threshold int
	logger    *zap.Logger
	now       func() time.Time
}

func New(orders Orders, catalog Catalog, lowStockThreshold int, logger *zap.Logger) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 3
	}
	return &Service{
		orders:    orders,
		catalog:   catalog,
		threshold: lowStockThreshold,
		logger:    logging.OrNop(logger).Named("analytics"),
		now:       time.Now,
	}
}

// Report aggregates revenue-bearing orders created in [from, to]. A zero to
// means now; a zero from means 30 days before to.
func (s *Service) Report(ctx context.Context, from, to time.Time) (Report, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		return Report{}, fmt.Errorf("from %s is after to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	orders, err := s.orders.List(ctx, domain.OrderFilter{Statuses: domain.RevenueStatuses, From: from, To: to})
	if err != nil {
		return Report{}, err
	}
	report := Summarize(orders)
	s.logger.Debug("analytics report",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("orders", report.TotalOrders),
		zap.Int64("revenue_cents", report.TotalRevenueCents),
	)
	return report, nil
}

type Dashboard struct {
	TodayOrders       int                 `json:"todayOrders"`
	TotalRevenueCents int64               `json:"totalRevenueCents"`
	LowStockCount     int                 `json:"lowStockCount"`
	TotalProducts     int                 `json:"totalProducts"`
	RecentOrders      []domain.Order      `json:"recentOrders"`
	LowStockItems     []domain.StockAlert `json:"lowStockItems"`
}

// Dashboard loads orders, products and low-stock variants concurrently and
// derives the back-office headline numbers.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		orders   []domain.Order
		products []domain.Product
		lowStock []domain.StockAlert
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.List(gctx, domain.OrderFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.catalog.ListProducts(gctx, domain.ProductFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.catalog.LowStock(gctx, s.threshold)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("load dashboard", zap.Error(err))
		return Dashboard{}, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	d := Dashboard{
		LowStockCount: len(lowStock),
		TotalProducts: len(products),
		RecentOrders:  head(orders, dashboardListLimit),
		LowStockItems: head(lowStock, dashboardListLimit),
	}
	for _, o := range orders {
		if !o.CreatedAt.Before(startOfDay) {
			d.TodayOrders++
		}
		if countsAsRevenue(o.Status) {
			d.TotalRevenueCents += o.TotalCents
		}
	}
	return d, nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
