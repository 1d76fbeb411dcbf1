package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type stubProducts struct {
	products  map[string]domain.Product
	listOpts  productrepo.ListOptions
	created   domain.Product
	variant   domain.Variant
	threshold int
}

func (s *stubProducts) List(_ context.Context, opts productrepo.ListOptions) ([]domain.Product, error) {
	s.listOpts = opts
	return nil, nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProducts) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = "new"
	s.created = p
	return &p, nil
}

func (s *stubProducts) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

func (s *stubProducts) Deactivate(_ context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *stubProducts) CreateVariant(_ context.Context, v domain.Variant) (*domain.Variant, error) {
	s.variant = v
	return &v, nil
}

func (s *stubProducts) UpdateVariant(_ context.Context, v domain.Variant) (*domain.Variant, error) {
	return &v, nil
}

func (s *stubProducts) SetStock(_ context.Context, id string, q int) (*domain.Variant, error) {
	return &domain.Variant{ID: id, Quantity: q}, nil
}

func (s *stubProducts) LowStock(_ context.Context, threshold int) ([]domain.StockAlert, error) {
	s.threshold = threshold
	return nil, nil
}

type stubBrands struct {
	includeInactive bool
}

func (s *stubBrands) List(_ context.Context, includeInactive bool) ([]domain.Brand, error) {
	s.includeInactive = includeInactive
	return nil, nil
}

func (s *stubBrands) GetByID(context.Context, string) (*domain.Brand, error) {
	return nil, domain.ErrNotFound
}

func (s *stubBrands) Create(_ context.Context, b domain.Brand) (*domain.Brand, error) {
	return &b, nil
}

func (s *stubBrands) Update(_ context.Context, b domain.Brand) (*domain.Brand, error) {
	return &b, nil
}

func newService() (*Service, *stubProducts, *stubBrands) {
	products := &stubProducts{products: map[string]domain.Product{
		"live":   {ID: "live", NameSr: "Košulja", IsActive: true, Brand: &domain.Brand{Name: "Nordic"}},
		"hidden": {ID: "hidden", NameSr: "Staro", IsActive: false},
	}}
	brands := &stubBrands{}
	return New(products, brands, 0, nil), products, brands
}

func TestListProductsIsActiveOnly(t *testing.T) {
	svc, products, _ := newService()

	_, err := svc.ListProducts(context.Background(), domain.ProductFilter{Category: "all", InStockOnly: true})
	require.NoError(t, err)
	assert.False(t, products.listOpts.IncludeInactive)
	assert.True(t, products.listOpts.InStockOnly)

	_, err = svc.AdminListProducts(context.Background())
	require.NoError(t, err)
	assert.True(t, products.listOpts.IncludeInactive)
}

func TestGetProductHidesInactive(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.GetProduct(context.Background(), "hidden")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := svc.AdminGetProduct(context.Background(), "hidden")
	require.NoError(t, err)
	assert.Equal(t, "hidden", p.ID)
}

func TestCreateProductDerivesSlugAndDefaults(t *testing.T) {
	svc, products, _ := newService()
	empty := " "

	_, err := svc.CreateProduct(context.Background(), ProductInput{NameSr: " Zimska Jakna ", BrandID: &empty, BasePriceCents: 8900})
	require.NoError(t, err)

	assert.Equal(t, "zimska-jakna", products.created.Slug)
	assert.Nil(t, products.created.BrandID)
	assert.True(t, products.created.IsActive)
}

func TestCreateProductValidates(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.CreateProduct(context.Background(), ProductInput{BasePriceCents: 100})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateProduct(context.Background(), ProductInput{NameSr: "Kapa", BasePriceCents: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateVariantGeneratesSKU(t *testing.T) {
	svc, products, _ := newService()

	v, err := svc.CreateVariant(context.Background(), "live", VariantInput{Size: "xl", Quantity: 4})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(v.SKU, "NOR-KOŠ-XL-"), v.SKU)
	assert.Equal(t, "live", products.variant.ProductID)

	_, err = svc.CreateVariant(context.Background(), "missing", VariantInput{Size: "M"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CreateVariant(context.Background(), "live", VariantInput{Size: "M", Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetStockRejectsNegative(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.SetStock(context.Background(), "v1", -2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	v, err := svc.SetStock(context.Background(), "v1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Quantity)
}

func TestLowStockDefaultsThreshold(t *testing.T) {
	svc, products, _ := newService()

	_, err := svc.LowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, products.threshold)

	_, err = svc.LowStock(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, products.threshold)
}

func TestBrands(t *testing.T) {
	svc, _, brands := newService()

	_, err := svc.ListBrands(context.Background())
	require.NoError(t, err)
	assert.False(t, brands.includeInactive)

	_, err = svc.CreateBrand(context.Background(), BrandInput{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	b, err := svc.UpdateBrand(context.Background(), "b1", BrandInput{Name: "Nordic"})
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.True(t, b.IsActive)
}
