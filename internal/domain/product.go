package domain

import "time"

// Brand groups products under a label shown in the storefront filters.
type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Product struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	BrandID        *string   `json:"brandId,omitempty"`
	Brand          *Brand    `json:"brand,omitempty"`
	NameSr         string    `json:"nameSr"`
	NameEn         string    `json:"nameEn"`
	DescriptionSr  string    `json:"descriptionSr,omitempty"`
	DescriptionEn  string    `json:"descriptionEn,omitempty"`
	Category       string    `json:"category"`
	Style          string    `json:"style,omitempty"`
	BasePriceCents int64     `json:"basePriceCents"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Variants       []Variant `json:"variants"`
}

// Variant is one size of a product and carries its own stock count.
type Variant struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Size      string    `json:"size"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductFilter narrows storefront listings. Empty fields do not filter.
type ProductFilter struct {
	Category    string
	BrandID     string
	Style       string
	InStockOnly bool
}

// TotalStock sums the stock of all variants.
func (p Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Quantity
	}
	return total
}

// InStock reports whether any variant has stock left.
func (p Product) InStock() bool {
	return p.TotalStock() > 0
}

// AvailableSizes lists sizes of variants with stock, in variant order.
func (p Product) AvailableSizes() []string {
	var sizes []string
	for _, v := range p.Variants {
		if v.Quantity > 0 {
			sizes = append(sizes, v.Size)
		}
	}
	return sizes
}

// StockAlert is a variant at or below the low-stock threshold, with its product.
type StockAlert struct {
	Variant Variant `json:"variant"`
	Product Product `json:"product"`
}
