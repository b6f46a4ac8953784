package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"restaurant-ops/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, establishment_id::text, category_id::text, key, sku, name, COALESCE(description, ''), price_cents, currency, modifiers, available, created_at`

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

func (r *postgresRepo) ListByEstablishment(ctx context.Context, establishmentID string) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE establishment_id = $1
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q, establishmentID)
	if err != nil {
		r.logger.Printf("product repo: list establishment_id=%s error=%v", establishmentID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows establishment_id=%s error=%v", establishmentID, err)
		return nil, err
	}
	r.logger.Printf("product repo: list establishment_id=%s count=%d", establishmentID, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, establishmentID, id string) (*domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE establishment_id = $1 AND id = $2
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, establishmentID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get establishment_id=%s id=%s not found", establishmentID, id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get establishment_id=%s id=%s error=%v", establishmentID, id, err)
		return nil, err
	}
	return &p, nil
}

// GetByIDs loads the given products in one query. Missing ids are simply
// absent from the result.
func (r *postgresRepo) GetByIDs(ctx context.Context, establishmentID string, ids []string) (map[string]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE establishment_id = $1 AND id::text = ANY($2)
`
	rows, err := r.pool.Query(ctx, q, establishmentID, ids)
	if err != nil {
		r.logger.Printf("product repo: get many establishment_id=%s error=%v", establishmentID, err)
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, establishment_id, category_id, key, sku, name, description, price_cents, currency, modifiers, available)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, COALESCE($10, '[]'::jsonb), $11)
ON CONFLICT (establishment_id, key) DO UPDATE SET
    category_id = EXCLUDED.category_id,
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    modifiers = EXCLUDED.modifiers,
    available = EXCLUDED.available
RETURNING id::text, created_at
`
	modifiers := product.Modifiers
	if modifiers == nil {
		modifiers = []domain.Modifier{}
	}
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.EstablishmentID,
		product.CategoryID,
		product.Key,
		product.SKU,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		modifiers,
		product.Available,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert key=%s establishment_id=%s error=%v", product.Key, product.EstablishmentID, err)
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s establishment_id=%s existing_id=%s import_id=%s", product.Key, product.EstablishmentID, res.ID, product.ID)
	}
	res.Modifiers = modifiers
	r.logger.Printf("product repo: upserted key=%s establishment_id=%s id=%s", res.Key, res.EstablishmentID, res.ID)
	return &res, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.EstablishmentID, &p.CategoryID, &p.Key, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.Modifiers, &p.Available, &p.CreatedAt)
	return p, err
}
