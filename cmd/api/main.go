package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/language"
	"storefront/internal/logging"
	"storefront/internal/media"
	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/persist"
	brandrepo "storefront/internal/repository/brand"
	categoryrepo "storefront/internal/repository/category"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	analyticssvc "storefront/internal/service/analytics"
	authsvc "storefront/internal/service/auth"
	catalogsvc "storefront/internal/service/catalog"
	categorysvc "storefront/internal/service/category"
	ordersvc "storefront/internal/service/order"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer dbpool.Close()

	sessions, err := persist.OpenSQLite(ctx, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()
	snapshots := persist.NewAdapter(sessions, logger, cfg.PersistTimeout)

	sender, err := notify.SenderFromConfig(cfg.Notify, logger)
	if err != nil {
		return fmt.Errorf("notification transport: %w", err)
	}
	notifier := notify.NewNotifier(sender, logger)
	defer notifier.Close()

	var uploads media.Uploader = media.Disabled{}
	if cfg.Media.GCSBucket != "" {
		bucket, err := media.NewGCS(ctx, cfg.Media, logger)
		if err != nil {
			return fmt.Errorf("media bucket: %w", err)
		}
		uploads = bucket
	}
	defer uploads.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	brandRepo := brandrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(productRepo, brandRepo, cfg.LowStockThreshold, logger)
	orderService := ordersvc.New(orderRepo, notifier, logger)
	analyticsService := analyticssvc.New(orderService, catalogService, cfg.LowStockThreshold, logger)
	authService := authsvc.New(cfg.Admin.Email, cfg.Admin.PasswordHash, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	if !authService.Configured() {
		logger.Warn("admin login disabled: ADMIN_EMAIL, ADMIN_PASSWORD_HASH and JWT_SECRET must all be set")
	}

	carts := cart.NewSessions(snapshots, cfg.CartCapacity, cfg.CartIdle)
	metrics.RegisterCartSessions(prometheus.DefaultRegisterer, carts.Len)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Catalog:            catalogService,
		Categories:         categorysvc.New(categoryrepo.NewPostgres(dbpool, logger)),
		Orders:             orderService,
		Analytics:          analyticsService,
		Auth:               authService,
		Uploads:            uploads,
		Carts:              carts,
		Languages:          language.NewPreferences(snapshots),
		Notifier:           notifier,
		CheckoutClearDelay: cfg.CheckoutClearDelay,
		NotifyTimeout:      cfg.Notify.Timeout,
		CORSOrigins:        cfg.CORSAllowedOrigins,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, dbpool)
		},
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
