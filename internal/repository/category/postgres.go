package category

import (
	"context"
	"fmt"
	"io"
	"log"

	"restaurant-ops/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listCategoriesSQL = `
SELECT id::text, establishment_id::text, key, name, position, created_at
FROM categories
WHERE establishment_id = $1
ORDER BY position, name`

const upsertCategorySQL = `
INSERT INTO categories (establishment_id, key, name, position)
VALUES ($1, $2, $3, $4)
ON CONFLICT (establishment_id, key) DO UPDATE
SET name = EXCLUDED.name, position = EXCLUDED.position
RETURNING id::text, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByEstablishment(ctx context.Context, establishmentID string) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.ID, &c.EstablishmentID, &c.Key, &c.Name, &c.Position, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return categories, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	saved := c
	err := r.pool.QueryRow(ctx, upsertCategorySQL, c.EstablishmentID, c.Key, c.Name, c.Position).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert category %s: %w", c.Key, err)
	}
	r.logger.Printf("category repo: upsert establishment_id=%s key=%s id=%s position=%d", c.EstablishmentID, c.Key, saved.ID, c.Position)
	return &saved, nil
}
