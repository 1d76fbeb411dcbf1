package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

// ProductStore is the slice of the product repository used for bulk loads.
type ProductStore interface {
	UpsertBySlug(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpsertVariant(ctx context.Context, v domain.Variant) (*domain.Variant, error)
}

type BrandStore interface {
	GetByName(ctx context.Context, name string) (*domain.Brand, error)
	Create(ctx context.Context, b domain.Brand) (*domain.Brand, error)
}

// Writer upserts products with their variants, creating brands by name on
// first sight. Loads are idempotent: products match on slug and variants on
// (product, size).
type Writer struct {
	products ProductStore
	brands   BrandStore
	logger   *zap.Logger
	brandIDs map[string]string
}

func NewWriter(products ProductStore, brands BrandStore, logger *zap.Logger) *Writer {
	return &Writer{
		products: products,
		brands:   brands,
		logger:   logging.OrNop(logger).Named("importer"),
		brandIDs: make(map[string]string),
	}
}

// EnsureBrand returns the id of the brand named b.Name, creating it when
// missing.
func (w *Writer) EnsureBrand(ctx context.Context, b domain.Brand) (string, error) {
	name := strings.TrimSpace(b.Name)
	key := strings.ToLower(name)
	if id, ok := w.brandIDs[key]; ok {
		return id, nil
	}
	existing, err := w.brands.GetByName(ctx, name)
	switch {
	case err == nil:
		w.brandIDs[key] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, domain.ErrNotFound):
		return "", fmt.Errorf("look up brand %q: %w", name, err)
	}
	b.Name = name
	b.IsActive = true
	created, err := w.brands.Create(ctx, b)
	if err != nil {
		return "", fmt.Errorf("create brand %q: %w", name, err)
	}
	w.logger.Info("brand created", zap.String("id", created.ID), zap.String("name", name))
	w.brandIDs[key] = created.ID
	return created.ID, nil
}

// Save upserts p and every variant in p.Variants. brandName may be empty.
func (w *Writer) Save(ctx context.Context, p domain.Product, brandName string) (*domain.Product, error) {
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.NameSr)
	}
	if p.Slug == "" || strings.TrimSpace(p.NameSr) == "" {
		return nil, fmt.Errorf("product %q: slug and Serbian name are required", p.Slug)
	}
	if p.BasePriceCents < 0 {
		return nil, fmt.Errorf("product %q: negative price", p.Slug)
	}
	if brandName != "" {
		id, err := w.EnsureBrand(ctx, domain.Brand{Name: brandName})
		if err != nil {
			return nil, err
		}
		p.BrandID = &id
	}

	saved, err := w.products.UpsertBySlug(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("upsert product %q: %w", p.Slug, err)
	}
	saved.Variants = saved.Variants[:0:0]
	for _, v := range p.Variants {
		size := strings.ToUpper(strings.TrimSpace(v.Size))
		if size == "" {
			return nil, fmt.Errorf("product %q: variant without size", p.Slug)
		}
		if v.Quantity < 0 {
			return nil, fmt.Errorf("product %q size %s: negative quantity", p.Slug, size)
		}
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			sku = domain.GenerateSKU(p.NameSr, size, brandName)
		}
		stored, err := w.products.UpsertVariant(ctx, domain.Variant{ProductID: saved.ID, Size: size, SKU: sku, Quantity: v.Quantity})
		if err != nil {
			return nil, fmt.Errorf("upsert variant %s/%s: %w", p.Slug, size, err)
		}
		saved.Variants = append(saved.Variants, *stored)
	}
	w.logger.Debug("product saved", zap.String("slug", p.Slug), zap.Int("variants", len(saved.Variants)))
	return saved, nil
}
