package coupon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"restaurant-ops/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const couponColumns = `id::text, establishment_id::text, code, kind, value::text, min_order_value_cents, max_discount_cents, usage_limit, used_count, valid_from, valid_to, is_active, created_at`

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

// NormalizeCode is the canonical form codes are stored and looked up in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *postgresRepo) GetByCode(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error) {
	q := `
SELECT ` + couponColumns + `
FROM coupons
WHERE establishment_id = $1 AND code = $2
`
	rule, err := scanCoupon(r.pool.QueryRow(ctx, q, establishmentID, NormalizeCode(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("coupon repo: get establishment_id=%s code=%s error=%v", establishmentID, code, err)
		return nil, err
	}
	return &rule, nil
}

func (r *postgresRepo) List(ctx context.Context, establishmentID string) ([]domain.DiscountRule, error) {
	q := `
SELECT ` + couponColumns + `
FROM coupons
WHERE establishment_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, establishmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DiscountRule
	for rows.Next() {
		rule, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, rule domain.DiscountRule) (*domain.DiscountRule, error) {
	q := `
INSERT INTO coupons (establishment_id, code, kind, value, min_order_value_cents, max_discount_cents, usage_limit, valid_from, valid_to, is_active)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
RETURNING ` + couponColumns
	out, err := scanCoupon(r.pool.QueryRow(ctx, q,
		rule.EstablishmentID,
		NormalizeCode(rule.Code),
		string(rule.Kind),
		rule.Value.String(),
		rule.MinOrderValueCents,
		rule.MaxDiscountCents,
		rule.UsageLimit,
		rule.ValidFrom,
		rule.ValidTo,
		rule.IsActive,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("coupon repo: create establishment_id=%s code=%s error=%v", rule.EstablishmentID, rule.Code, err)
		return nil, err
	}
	r.logger.Printf("coupon repo: created establishment_id=%s code=%s id=%s", out.EstablishmentID, out.Code, out.ID)
	return &out, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, establishmentID, code string, active bool) (*domain.DiscountRule, error) {
	q := `
UPDATE coupons
SET is_active = $3
WHERE establishment_id = $1 AND code = $2
RETURNING ` + couponColumns
	out, err := scanCoupon(r.pool.QueryRow(ctx, q, establishmentID, NormalizeCode(code), active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func scanCoupon(row pgx.Row) (domain.DiscountRule, error) {
	var (
		rule  domain.DiscountRule
		kind  string
		value string
	)
	err := row.Scan(
		&rule.ID,
		&rule.EstablishmentID,
		&rule.Code,
		&kind,
		&value,
		&rule.MinOrderValueCents,
		&rule.MaxDiscountCents,
		&rule.UsageLimit,
		&rule.UsedCount,
		&rule.ValidFrom,
		&rule.ValidTo,
		&rule.IsActive,
		&rule.CreatedAt,
	)
	if err != nil {
		return rule, err
	}
	rule.Kind = domain.DiscountKind(kind)
	rule.Value, err = decimal.NewFromString(value)
	if err != nil {
		return rule, fmt.Errorf("coupon %s: parse value %q: %w", rule.Code, value, err)
	}
	return rule, nil
}
