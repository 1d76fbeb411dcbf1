package domain

// CartLine is one product+size selection held in a session cart.
// UnitPriceCents and MaxQuantity are captured when the line is added.
type CartLine struct {
	ProductID      string `json:"productId"`
	VariantID      string `json:"variantId"`
	Name           string `json:"name"`
	LocalizedName  string `json:"nameEn"`
	Size           string `json:"size"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	MaxQuantity    int    `json:"maxQuantity"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

// TotalCents is the line subtotal.
func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
