package category

import "context"

// Repository reports how the catalog is spread over categories.
type Repository interface {
	// Counts returns the number of active products per category slug.
	Counts(ctx context.Context) (map[string]int, error)
}
