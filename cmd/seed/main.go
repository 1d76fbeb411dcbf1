package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logging"
	brandrepo "storefront/internal/repository/brand"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
)

func main() {
	file := flag.String("file", "", "YAML catalog to load instead of the built-in demo catalog")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := loadCatalog(*file)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	w := importer.NewWriter(productrepo.NewPostgres(pool, logger), brandrepo.NewPostgres(pool, logger), logger)
	res, err := seed.Apply(ctx, w, catalog)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	logger.Info("seed applied", zap.Int("products", res.Products), zap.Int("variants", res.Variants))
}

func loadCatalog(path string) (seed.Catalog, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return seed.Catalog{}, err
	}
	return seed.Parse(data)
}
