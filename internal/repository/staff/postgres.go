package staff

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"restaurant-ops/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const staffColumns = `id::text, establishment_id::text, email, password_hash, COALESCE(name, ''), role, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Staff) (*domain.Staff, error) {
	const q = `
INSERT INTO staff (establishment_id, email, password_hash, name, role)
VALUES ($1, $2, $3, NULLIF($4, ''), $5)
RETURNING ` + staffColumns
	return r.scanStaff(r.pool.QueryRow(ctx, q, s.EstablishmentID, strings.ToLower(strings.TrimSpace(s.Email)), s.PasswordHash, s.Name, s.Role))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, establishmentID, email string) (*domain.Staff, error) {
	const q = `
SELECT ` + staffColumns + `
FROM staff
WHERE establishment_id = $1 AND lower(email) = lower($2)
LIMIT 1
`
	return r.scanStaff(r.pool.QueryRow(ctx, q, establishmentID, strings.TrimSpace(email)))
}

func (r *postgresRepo) GetByID(ctx context.Context, establishmentID, id string) (*domain.Staff, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT ` + staffColumns + `
FROM staff
WHERE establishment_id = $1 AND id = $2
LIMIT 1
`
	return r.scanStaff(r.pool.QueryRow(ctx, q, establishmentID, id))
}

func (r *postgresRepo) scanStaff(row pgx.Row) (*domain.Staff, error) {
	var s domain.Staff
	err := row.Scan(&s.ID, &s.EstablishmentID, &s.Email, &s.PasswordHash, &s.Name, &s.Role, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("staff repo: scan error=%v", err)
		return nil, err
	}
	return &s, nil
}
