// Package analytics aggregates sales figures for the admin back office.
package analytics

import (
	"sort"
	"time"

	"storefront/internal/domain"
)

const topProductsLimit = 10

type ProductSales struct {
	Product      domain.Product `json:"product"`
	Quantity     int            `json:"quantity"`
	RevenueCents int64          `json:"revenueCents"`
}

type DayRevenue struct {
	Day          string `json:"day"`
	RevenueCents int64  `json:"revenueCents"`
}

// Report summarises revenue-bearing orders over a period.
type Report struct {
	TotalRevenueCents      int64          `json:"totalRevenueCents"`
	TotalOrders            int            `json:"totalOrders"`
	AverageOrderValueCents int64          `json:"averageOrderValueCents"`
	TopProducts            []ProductSales `json:"topProducts"`
	RevenueByDay           []DayRevenue   `json:"revenueByDay"`
}

// Summarize builds a Report from orders. Orders outside the revenue statuses
// are skipped. Items whose variant or product no longer resolves still count
// toward revenue but not toward top products.
func Summarize(orders []domain.Order) Report {
	report := Report{TopProducts: []ProductSales{}, RevenueByDay: []DayRevenue{}}
	sales := map[string]*ProductSales{}
	byDay := map[string]int64{}

	for _, o := range orders {
		if !countsAsRevenue(o.Status) {
			continue
		}
		report.TotalOrders++
		report.TotalRevenueCents += o.TotalCents
		byDay[o.CreatedAt.UTC().Format(time.DateOnly)] += o.TotalCents

		for _, item := range o.Items {
			if item.Product == nil || item.Product.ID == "" {
				continue
			}
			s, ok := sales[item.Product.ID]
			if !ok {
				s = &ProductSales{Product: *item.Product}
				sales[item.Product.ID] = s
			}
			s.Quantity += item.Quantity
			s.RevenueCents += item.TotalCents()
		}
	}

	if report.TotalOrders > 0 {
		report.AverageOrderValueCents = roundDiv(report.TotalRevenueCents, int64(report.TotalOrders))
	}

	for _, s := range sales {
		report.TopProducts = append(report.TopProducts, *s)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if a.RevenueCents != b.RevenueCents {
			return a.RevenueCents > b.RevenueCents
		}
		return a.Product.ID < b.Product.ID
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}

	for day, cents := range byDay {
		report.RevenueByDay = append(report.RevenueByDay, DayRevenue{Day: day, RevenueCents: cents})
	}
	sort.Slice(report.RevenueByDay, func(i, j int) bool {
		return report.RevenueByDay[i].Day < report.RevenueByDay[j].Day
	})
	return report
}

func countsAsRevenue(status string) bool {
	for _, s := range domain.RevenueStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// roundDiv divides non-negative a by b, rounding half up.
func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}
