// Package seed loads a demo catalog for local development.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"storefront/internal/domain"
	"storefront/internal/importer"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Brands   []BrandSeed   `yaml:"brands"`
	Products []ProductSeed `yaml:"products"`
}

type BrandSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	LogoURL     string `yaml:"logo_url"`
}

type ProductSeed struct {
	Slug          string        `yaml:"slug"`
	Brand         string        `yaml:"brand"`
	NameSr        string        `yaml:"name_sr"`
	NameEn        string        `yaml:"name_en"`
	DescriptionSr string        `yaml:"description_sr"`
	DescriptionEn string        `yaml:"description_en"`
	Category      string        `yaml:"category"`
	Style         string        `yaml:"style"`
	Price         string        `yaml:"price"`
	ImageURL      string        `yaml:"image_url"`
	Variants      []VariantSeed `yaml:"variants"`
}

type VariantSeed struct {
	Size     string `yaml:"size"`
	SKU      string `yaml:"sku"`
	Quantity int    `yaml:"quantity"`
}

// Default returns the embedded demo catalog.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return c, nil
}

// Apply writes the catalog through w. It is idempotent: brands match by name,
// products by slug and variants by size.
func Apply(ctx context.Context, w *importer.Writer, c Catalog) (importer.Result, error) {
	var res importer.Result
	for _, b := range c.Brands {
		if _, err := w.EnsureBrand(ctx, domain.Brand{Name: b.Name, Description: b.Description, LogoURL: b.LogoURL}); err != nil {
			return res, err
		}
	}
	for _, p := range c.Products {
		cents, err := importer.ParseCents(p.Price)
		if err != nil {
			return res, fmt.Errorf("product %s: %w", p.Slug, err)
		}
		product := domain.Product{
			Slug:           p.Slug,
			NameSr:         p.NameSr,
			NameEn:         p.NameEn,
			DescriptionSr:  p.DescriptionSr,
			DescriptionEn:  p.DescriptionEn,
			Category:       p.Category,
			Style:          p.Style,
			BasePriceCents: cents,
			ImageURL:       p.ImageURL,
			IsActive:       true,
		}
		for _, v := range p.Variants {
			product.Variants = append(product.Variants, domain.Variant{Size: v.Size, SKU: v.SKU, Quantity: v.Quantity})
		}
		saved, err := w.Save(ctx, product, p.Brand)
		if err != nil {
			return res, err
		}
		res.Products++
		res.Variants += len(saved.Variants)
	}
	return res, nil
}
