package category

import (
	"context"
	"sort"

	"storefront/internal/domain"
)

type Counter interface {
	Counts(ctx context.Context) (map[string]int, error)
}

type Service struct {
	repo Counter
}

func New(repo Counter) *Service {
	return &Service{repo: repo}
}

// List returns the storefront categories with their active product counts.
// Categories used by products but missing from the navigation list are
// appended in slug order, named by their slug.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(domain.Categories)+len(counts))
	known := make(map[string]bool, len(domain.Categories))
	for _, c := range domain.Categories {
		c.Sizes = domain.SizesFor(c.Slug)
		c.ProductCount = counts[c.Slug]
		known[c.Slug] = true
		out = append(out, c)
	}

	var extra []string
	for slug := range counts {
		if !known[slug] {
			extra = append(extra, slug)
		}
	}
	sort.Strings(extra)
	for _, slug := range extra {
		out = append(out, domain.Category{
			Slug:         slug,
			NameSr:       slug,
			NameEn:       slug,
			Sizes:        domain.SizesFor(slug),
			ProductCount: counts[slug],
		})
	}
	return out, nil
}
