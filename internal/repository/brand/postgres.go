package brand

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("brand_repo")}
}

const brandColumns = `id::text, name, logo_url, description, is_active, created_at`

func scanBrand(row pgx.Row) (*domain.Brand, error) {
	var b domain.Brand
	if err := row.Scan(&b.ID, &b.Name, &b.LogoURL, &b.Description, &b.IsActive, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) List(ctx context.Context, includeInactive bool) ([]domain.Brand, error) {
	q := `SELECT ` + brandColumns + ` FROM brands`
	if !includeInactive {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("list brands", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("list brands", zap.Int("count", len(result)), zap.Bool("include_inactive", includeInactive))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	b, err := scanBrand(r.pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	return r.mapGet(b, err, "id", id)
}

// GetByName matches case-insensitively and prefers the oldest brand.
func (r *postgresRepo) GetByName(ctx context.Context, name string) (*domain.Brand, error) {
	b, err := scanBrand(r.pool.QueryRow(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE lower(name) = lower($1) ORDER BY created_at LIMIT 1`, name))
	return r.mapGet(b, err, "name", name)
}

func (r *postgresRepo) mapGet(b *domain.Brand, err error, field, value string) (*domain.Brand, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get brand", zap.String(field, value), zap.Error(err))
		return nil, err
	}
	return b, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Brand) (*domain.Brand, error) {
	const q = `
INSERT INTO brands (name, logo_url, description, is_active)
VALUES ($1, $2, $3, $4)
RETURNING ` + brandColumns
	b, err := scanBrand(r.pool.QueryRow(ctx, q, in.Name, in.LogoURL, in.Description, in.IsActive))
	if err != nil {
		r.logger.Error("create brand", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Info("brand created", zap.String("id", b.ID), zap.String("name", b.Name))
	return b, nil
}

func (r *postgresRepo) Update(ctx context.Context, in domain.Brand) (*domain.Brand, error) {
	const q = `
UPDATE brands SET name = $2, logo_url = $3, description = $4, is_active = $5
WHERE id = $1
RETURNING ` + brandColumns
	b, err := scanBrand(r.pool.QueryRow(ctx, q, in.ID, in.Name, in.LogoURL, in.Description, in.IsActive))
	return r.mapGet(b, err, "id", in.ID)
}
