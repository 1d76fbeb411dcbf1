package httpserver

import (
	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/language"
)

const currencyCode = "EUR"

type priceValue struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
	Formatted      string `json:"formatted"`
}

func money(cents int64) priceValue {
	return priceValue{
		Type:           "centPrecision",
		CurrencyCode:   currencyCode,
		CentAmount:     cents,
		FractionDigits: 2,
		Formatted:      domain.FormatPrice(cents),
	}
}

// productResponse is a product with its display fields resolved for one
// language.
type productResponse struct {
	domain.Product
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Price          priceValue `json:"price"`
	InStock        bool       `json:"inStock"`
	AvailableSizes []string   `json:"availableSizes"`
}

func toProductResponse(p domain.Product, lang language.Code) productResponse {
	if p.Variants == nil {
		p.Variants = []domain.Variant{}
	}
	sizes := p.AvailableSizes()
	if sizes == nil {
		sizes = []string{}
	}
	return productResponse{
		Product:        p,
		Name:           language.Pick(lang, p.NameSr, p.NameEn),
		Description:    language.Pick(lang, p.DescriptionSr, p.DescriptionEn),
		Price:          money(p.BasePriceCents),
		InStock:        p.InStock(),
		AvailableSizes: sizes,
	}
}

func toProductResponses(products []domain.Product, lang language.Code) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, lang))
	}
	return out
}

type categoryResponse struct {
	domain.Category
	Name string `json:"name"`
}

type cartLineResponse struct {
	domain.CartLine
	DisplayName string     `json:"displayName"`
	UnitPrice   priceValue `json:"unitPrice"`
	TotalPrice  priceValue `json:"totalPrice"`
}

type cartResponse struct {
	Lines      []cartLineResponse `json:"lines"`
	IsOpen     bool               `json:"isOpen"`
	TotalItems int                `json:"totalItems"`
	TotalPrice priceValue         `json:"totalPrice"`
}

func toCartResponse(state cart.State, lang language.Code) cartResponse {
	lines := make([]cartLineResponse, 0, len(state.Lines))
	for _, line := range state.Lines {
		lines = append(lines, cartLineResponse{
			CartLine:    line,
			DisplayName: language.Pick(lang, line.Name, line.LocalizedName),
			UnitPrice:   money(line.UnitPriceCents),
			TotalPrice:  money(line.TotalCents()),
		})
	}
	return cartResponse{
		Lines:      lines,
		IsOpen:     state.IsOpen,
		TotalItems: state.TotalItems,
		TotalPrice: money(state.TotalCents),
	}
}

type orderResponse struct {
	domain.Order
	Total priceValue `json:"total"`
}

func toOrderResponse(o domain.Order) orderResponse {
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return orderResponse{Order: o, Total: money(o.TotalCents)}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
