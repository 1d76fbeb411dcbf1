package category

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("category_repo")}
}

func (r *postgresRepo) Counts(ctx context.Context) (map[string]int, error) {
	const q = `
SELECT category, count(*)
FROM products
WHERE is_active AND category <> ''
GROUP BY category
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("count categories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			slug  string
			count int
		)
		if err := rows.Scan(&slug, &count); err != nil {
			return nil, err
		}
		result[slug] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
