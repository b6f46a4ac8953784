package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"restaurant-ops/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, establishment_id::text, number, status, type, COALESCE(coupon_code, ''), subtotal_cents, discount_cents, delivery_fee_cents, service_fee_cents, total_cents, COALESCE(notes, ''), COALESCE(customer_name, ''), COALESCE(table_label, ''), created_at, updated_at`

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

// Create allocates the order number, redeems the coupon and stores the order
// with its items and initial status event in a single transaction.
func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	o := in.Order
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = domain.StatusPending
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
UPDATE establishments
SET next_order_number = next_order_number + 1
WHERE id = $1
RETURNING next_order_number - 1
`, o.EstablishmentID).Scan(&o.Number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("allocate order number: %w", err)
	}

	if in.RedeemCoupon && o.CouponCode != "" {
		cmd, err := tx.Exec(ctx, `
UPDATE coupons
SET used_count = used_count + 1
WHERE establishment_id = $1 AND code = $2 AND is_active
  AND (usage_limit IS NULL OR used_count < usage_limit)
`, o.EstablishmentID, o.CouponCode)
		if err != nil {
			return nil, fmt.Errorf("redeem coupon: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return nil, ErrCouponExhausted
		}
	}

	err = tx.QueryRow(ctx, `
INSERT INTO orders (id, establishment_id, number, status, type, coupon_code, subtotal_cents, discount_cents, delivery_fee_cents, service_fee_cents, total_cents, notes, customer_name, table_label)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''))
RETURNING created_at, updated_at
`,
		o.ID, o.EstablishmentID, o.Number, string(o.Status), string(o.Type), o.CouponCode,
		o.SubtotalCents, o.DiscountCents, o.DeliveryFeeCents, o.ServiceFeeCents, o.TotalCents,
		o.Notes, o.CustomerName, o.TableLabel,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		modifiers := item.Modifiers
		if modifiers == nil {
			modifiers = []string{}
		}
		err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, position, product_id, name, unit_price_cents, quantity, modifier_total_cents, modifiers, notes)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, NULLIF($9, ''))
RETURNING id::text
`, o.ID, i, item.ProductID, item.Name, item.UnitPriceCents, item.Quantity, item.ModifierTotalCents, modifiers, item.Notes).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	if err := insertEvent(ctx, tx, o.ID, "", o.Status, "", in.ActorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created establishment_id=%s id=%s number=%d total_cents=%d", o.EstablishmentID, o.ID, o.Number, o.TotalCents)
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, establishmentID, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE establishment_id = $1 AND id = $2
`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, establishmentID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) List(ctx context.Context, establishmentID string, filter ListFilter) ([]domain.Order, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE establishment_id = $1
  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
  AND ($3::timestamptz IS NULL OR created_at >= $3)
ORDER BY created_at ASC, number ASC
LIMIT $4
`
	rows, err := r.pool.Query(ctx, q, establishmentID, statuses, filter.Since, limit)
	if err != nil {
		r.logger.Printf("order repo: list establishment_id=%s error=%v", establishmentID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus applies change only while the stored status still equals
// change.From; otherwise it reports domain.ErrConflict.
func (r *postgresRepo) UpdateStatus(ctx context.Context, change StatusChange) (*domain.Order, error) {
	if _, err := uuid.Parse(change.OrderID); err != nil {
		return nil, domain.ErrNotFound
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE orders
SET status = $4, updated_at = now()
WHERE establishment_id = $1 AND id = $2 AND status = $3
`, change.EstablishmentID, change.OrderID, string(change.From), string(change.To))
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE establishment_id = $1 AND id = $2`, change.EstablishmentID, change.OrderID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		r.logger.Printf("order repo: stale status update id=%s expected=%s current=%s", change.OrderID, change.From, current)
		return nil, fmt.Errorf("order %s is %s, not %s: %w", change.OrderID, current, change.From, domain.ErrConflict)
	}

	if err := insertEvent(ctx, tx, change.OrderID, change.From, change.To, change.Notes, change.ActorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: status id=%s from=%s to=%s", change.OrderID, change.From, change.To)
	return r.GetByID(ctx, change.EstablishmentID, change.OrderID)
}

func (r *postgresRepo) Events(ctx context.Context, establishmentID, orderID string) ([]domain.StatusEvent, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT e.id::text, e.order_id::text, COALESCE(e.from_status, ''), e.to_status, COALESCE(e.notes, ''), COALESCE(e.actor_id, ''), e.created_at
FROM order_status_events e
JOIN orders o ON o.id = e.order_id
WHERE o.establishment_id = $1 AND e.order_id = $2
ORDER BY e.created_at ASC
`
	rows, err := r.pool.Query(ctx, q, establishmentID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.StatusEvent
	for rows.Next() {
		var (
			e        domain.StatusEvent
			from, to string
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &from, &to, &e.Notes, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.From = domain.OrderStatus(from)
		e.To = domain.OrderStatus(to)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrNotFound
	}
	return events, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	const q = `
SELECT id::text, order_id::text, COALESCE(product_id::text, ''), name, unit_price_cents, quantity, modifier_total_cents, modifiers, COALESCE(notes, '')
FROM order_items
WHERE order_id::text = ANY($1)
ORDER BY order_id, position ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    domain.LineItem
			orderID string
		)
		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.Name, &item.UnitPriceCents, &item.Quantity, &item.ModifierTotalCents, &item.Modifiers, &item.Notes); err != nil {
			return err
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

func insertEvent(ctx context.Context, tx pgx.Tx, orderID string, from, to domain.OrderStatus, notes, actorID string) error {
	_, err := tx.Exec(ctx, `
INSERT INTO order_status_events (order_id, from_status, to_status, notes, actor_id)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''))
`, orderID, string(from), string(to), notes, actorID)
	if err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o            domain.Order
		status, typ string
	)
	err := row.Scan(
		&o.ID,
		&o.EstablishmentID,
		&o.Number,
		&status,
		&typ,
		&o.CouponCode,
		&o.SubtotalCents,
		&o.DiscountCents,
		&o.DeliveryFeeCents,
		&o.ServiceFeeCents,
		&o.TotalCents,
		&o.Notes,
		&o.CustomerName,
		&o.TableLabel,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	o.Status = domain.OrderStatus(status)
	o.Type = domain.OrderType(typ)
	return o, err
}
