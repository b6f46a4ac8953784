package establishment

import (
	"context"
	"errors"
	"io"
	"log"

	"restaurant-ops/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Establishment, error) {
	const q = `
SELECT id::text, key, name, currency, default_delivery_fee_cents, service_fee_cents, created_at
FROM establishments
WHERE key = $1
`
	var e domain.Establishment
	err := r.pool.QueryRow(ctx, q, key).Scan(&e.ID, &e.Key, &e.Name, &e.Currency, &e.DefaultDeliveryFeeCents, &e.ServiceFeeCents, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("establishment repo: get key=%s error=%v", key, err)
		return nil, err
	}
	return &e, nil
}

func (r *postgresRepo) Create(ctx context.Context, e domain.Establishment) (*domain.Establishment, error) {
	const q = `
INSERT INTO establishments (key, name, currency, default_delivery_fee_cents, service_fee_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, created_at
`
	out := e
	err := r.pool.QueryRow(ctx, q, e.Key, e.Name, e.Currency, e.DefaultDeliveryFeeCents, e.ServiceFeeCents).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	r.logger.Printf("establishment repo: created key=%s id=%s", out.Key, out.ID)
	return &out, nil
}
