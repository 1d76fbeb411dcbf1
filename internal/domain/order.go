package domain

import "time"

const (
	OrderStatusNew       = "new"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every status in workflow order.
var OrderStatuses = []string{
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// RevenueStatuses are the statuses counted by analytics.
var RevenueStatuses = []string{
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	Note         *string     `json:"note,omitempty"`
	TotalCents   int64       `json:"totalCents"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Items        []OrderItem `json:"items,omitempty"`
}

// OrderItem freezes the unit price, name and size at purchase time. Variant
// and Product are filled on reads when the variant still exists.
type OrderItem struct {
	ID                   string   `json:"id,omitempty"`
	OrderID              string   `json:"orderId,omitempty"`
	VariantID            string   `json:"variantId"`
	Quantity             int      `json:"quantity"`
	PriceAtPurchaseCents int64    `json:"priceAtPurchaseCents"`
	Name                 string   `json:"name,omitempty"`
	Size                 string   `json:"size,omitempty"`
	Variant              *Variant `json:"variant,omitempty"`
	Product              *Product `json:"product,omitempty"`
}

// TotalCents is the item subtotal at the purchase price.
func (i OrderItem) TotalCents() int64 {
	return i.PriceAtPurchaseCents * int64(i.Quantity)
}

// OrderFilter narrows admin order listings. Zero values do not filter.
type OrderFilter struct {
	Status   string
	Statuses []string
	From     time.Time
	To       time.Time
}
