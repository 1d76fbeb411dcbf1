package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	productrepo "storefront/internal/repository/product"
)

// ErrInvalidInput wraps validation failures on admin writes.
var ErrInvalidInput = errors.New("invalid input")

type Products interface {
	List(ctx context.Context, opts productrepo.ListOptions) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Deactivate(ctx context.Context, id string) error
	CreateVariant(ctx context.Context, v domain.Variant) (*domain.Variant, error)
	UpdateVariant(ctx context.Context, v domain.Variant) (*domain.Variant, error)
	SetStock(ctx context.Context, variantID string, quantity int) (*domain.Variant, error)
	LowStock(ctx context.Context, threshold int) ([]domain.StockAlert, error)
}

type Brands interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Brand, error)
	GetByID(ctx context.Context, id string) (*domain.Brand, error)
	Create(ctx context.Context, b domain.Brand) (*domain.Brand, error)
	Update(ctx context.Context, b domain.Brand) (*domain.Brand, error)
}

// Service serves the storefront catalog and the admin catalog screens.
type Service struct {
	products          Products
	brands            Brands
	lowStockThreshold int
	logger            *zap.Logger
}

func New(products Products, brands Brands, lowStockThreshold int, logger *zap.Logger) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 3
	}
	return &Service{
		products:          products,
		brands:            brands,
		lowStockThreshold: lowStockThreshold,
		logger:            logging.OrNop(logger).Named("catalog"),
	}
}

// ListProducts returns active products matching filter, newest first.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, productrepo.ListOptions{ProductFilter: filter})
}

// AdminListProducts includes inactive products.
func (s *Service) AdminListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx, productrepo.ListOptions{IncludeInactive: true})
}

// GetProduct returns an active product. Inactive products are not found.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) AdminGetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ProductInput is the admin payload for product create and update.
type ProductInput struct {
	Slug           string  `json:"slug"`
	BrandID        *string `json:"brandId"`
	NameSr         string  `json:"nameSr"`
	NameEn         string  `json:"nameEn"`
	DescriptionSr  string  `json:"descriptionSr"`
	DescriptionEn  string  `json:"descriptionEn"`
	Category       string  `json:"category"`
	Style          string  `json:"style"`
	BasePriceCents int64   `json:"basePriceCents"`
	ImageURL       string  `json:"imageUrl"`
	IsActive       *bool   `json:"isActive"`
}

func (in ProductInput) toProduct() (domain.Product, error) {
	name := strings.TrimSpace(in.NameSr)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: nameSr is required", ErrInvalidInput)
	}
	if in.BasePriceCents < 0 {
		return domain.Product{}, fmt.Errorf("%w: basePriceCents must not be negative", ErrInvalidInput)
	}
	slug := domain.Slugify(in.Slug)
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if slug == "" {
		return domain.Product{}, fmt.Errorf("%w: slug could not be derived from name", ErrInvalidInput)
	}
	brandID := in.BrandID
	if brandID != nil && strings.TrimSpace(*brandID) == "" {
		brandID = nil
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return domain.Product{
		Slug:           slug,
		BrandID:        brandID,
		NameSr:         name,
		NameEn:         strings.TrimSpace(in.NameEn),
		DescriptionSr:  in.DescriptionSr,
		DescriptionEn:  in.DescriptionEn,
		Category:       strings.TrimSpace(in.Category),
		Style:          strings.TrimSpace(in.Style),
		BasePriceCents: in.BasePriceCents,
		ImageURL:       strings.TrimSpace(in.ImageURL),
		IsActive:       active,
	}, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	return s.products.Create(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.products.Update(ctx, p)
}

// DeleteProduct is a soft delete.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Deactivate(ctx, id)
}

type VariantInput struct {
	Size     string `json:"size"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// CreateVariant adds a size to a product. A missing SKU is generated from the
// brand, product and size.
func (s *Service) CreateVariant(ctx context.Context, productID string, in VariantInput) (*domain.Variant, error) {
	size := strings.TrimSpace(in.Size)
	if size == "" {
		return nil, fmt.Errorf("%w: size is required", ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		brandName := ""
		if p.Brand != nil {
			brandName = p.Brand.Name
		}
		sku = domain.GenerateSKU(p.NameSr, size, brandName)
	}
	v, err := s.products.CreateVariant(ctx, domain.Variant{ProductID: p.ID, Size: size, SKU: sku, Quantity: in.Quantity})
	if err != nil {
		return nil, err
	}
	s.logger.Info("variant created", zap.String("product_id", p.ID), zap.String("size", size), zap.String("sku", sku))
	return v, nil
}

func (s *Service) UpdateVariant(ctx context.Context, variantID string, in VariantInput) (*domain.Variant, error) {
	if strings.TrimSpace(in.Size) == "" || strings.TrimSpace(in.SKU) == "" {
		return nil, fmt.Errorf("%w: size and sku are required", ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return s.products.UpdateVariant(ctx, domain.Variant{
		ID:       variantID,
		Size:     strings.TrimSpace(in.Size),
		SKU:      strings.TrimSpace(in.SKU),
		Quantity: in.Quantity,
	})
}

func (s *Service) SetStock(ctx context.Context, variantID string, quantity int) (*domain.Variant, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return s.products.SetStock(ctx, variantID, quantity)
}

// LowStock lists variants at or below threshold; threshold <= 0 uses the
// configured default.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]domain.StockAlert, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	return s.products.LowStock(ctx, threshold)
}

// ListBrands returns active brands ordered by name.
func (s *Service) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.brands.List(ctx, false)
}

func (s *Service) AdminListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.brands.List(ctx, true)
}

type BrandInput struct {
	Name        string `json:"name"`
	LogoURL     string `json:"logoUrl"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (in BrandInput) toBrand() (domain.Brand, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Brand{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return domain.Brand{Name: name, LogoURL: strings.TrimSpace(in.LogoURL), Description: in.Description, IsActive: active}, nil
}

func (s *Service) CreateBrand(ctx context.Context, in BrandInput) (*domain.Brand, error) {
	b, err := in.toBrand()
	if err != nil {
		return nil, err
	}
	return s.brands.Create(ctx, b)
}

func (s *Service) UpdateBrand(ctx context.Context, id string, in BrandInput) (*domain.Brand, error) {
	b, err := in.toBrand()
	if err != nil {
		return nil, err
	}
	b.ID = id
	return s.brands.Update(ctx, b)
}
