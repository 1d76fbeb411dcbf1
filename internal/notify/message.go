// Package notify delivers order notifications to staff over a message
// transport. Delivery is best-effort: a failed notification never affects the
// order it describes.
package notify

import (
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
)

const (
	KindOrderPlaced   = "order.placed"
	KindStatusChanged = "order.status_changed"

	defaultNote = "Nema napomene"
)

// Event is what a Sender publishes.
type Event struct {
	Kind    string `json:"kind"`
	OrderID string `json:"orderId"`
	Payload any    `json:"payload"`
}

// OrderPlacedMessage carries the fields of the staff email for a new order.
type OrderPlacedMessage struct {
	OrderID         string `json:"order_id"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	CustomerNote    string `json:"customer_note"`
	ItemsList       string `json:"items_list"`
	Total           string `json:"total"`
	OrderDate       string `json:"order_date"`
}

type StatusChangedMessage struct {
	OrderID      string `json:"order_id"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
	ChangedAt    string `json:"changed_at"`
}

// BuildOrderPlaced renders an order and its items as a notification message.
func BuildOrderPlaced(order domain.Order, items []domain.OrderItem, now time.Time) OrderPlacedMessage {
	note := defaultNote
	if order.Note != nil && strings.TrimSpace(*order.Note) != "" {
		note = *order.Note
	}
	return OrderPlacedMessage{
		OrderID:         order.ID,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.Phone,
		CustomerAddress: order.Address + ", " + order.City,
		CustomerNote:    note,
		ItemsList:       ItemsList(items),
		Total:           domain.FormatPrice(order.TotalCents),
		OrderDate:       now.Format("2.1.2006. 15:04:05"),
	}
}

// ItemsList renders one "- name (size) xQ - €line" row per item.
func ItemsList(items []domain.OrderItem) string {
	rows := make([]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, fmt.Sprintf("- %s (%s) x%d - %s",
			item.Name, item.Size, item.Quantity, domain.FormatPrice(item.TotalCents())))
	}
	return strings.Join(rows, "\n")
}

func BuildStatusChanged(order domain.Order, status string, now time.Time) StatusChangedMessage {
	return StatusChangedMessage{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Status:       status,
		ChangedAt:    now.UTC().Format(time.RFC3339),
	}
}
