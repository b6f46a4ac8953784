package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"restaurant-ops/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type categorySeed struct {
	Key      string
	Name     string
	Position int
}

type productSeed struct {
	Category    string
	Key         string
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Modifiers   []domain.Modifier
}

type staffSeed struct {
	Email string
	Name  string
	Role  string
}

type couponSeed struct {
	Code          string
	Kind          domain.DiscountKind
	Value         string
	MinOrderCents *int64
	MaxCents      *int64
	UsageLimit    *int
}

// Options name the establishment to seed and the password every seeded
// staff member gets.
type Options struct {
	EstablishmentKey  string
	EstablishmentName string
	Password          string
}

// Apply inserts an establishment with menu, staff and coupons for manual
// testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, opts Options) error {
	if opts.EstablishmentKey == "" || opts.Password == "" {
		return fmt.Errorf("establishment key and password required")
	}
	name := opts.EstablishmentName
	if name == "" {
		name = opts.EstablishmentKey
	}
	estID, err := ensureEstablishment(ctx, pool, opts.EstablishmentKey, name)
	if err != nil {
		return fmt.Errorf("ensure establishment: %w", err)
	}

	categories := []categorySeed{
		{Key: "burgers", Name: "Burgers", Position: 0},
		{Key: "sides", Name: "Sides", Position: 1},
		{Key: "drinks", Name: "Drinks", Position: 2},
	}
	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		id, err := upsertCategory(ctx, pool, estID, c)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
		categoryIDs[c.Key] = id
	}

	products := []productSeed{
		{
			Category:    "burgers",
			Key:         "classic-burger",
			SKU:         "BRG-CLASSIC",
			Name:        "Classic Burger",
			Description: "Beef patty, cheddar, house sauce",
			PriceCents:  1850,
			Modifiers: []domain.Modifier{
				{Key: "bacon", Name: "Bacon", PriceCents: 400},
				{Key: "extra-cheese", Name: "Extra cheese", PriceCents: 250},
			},
		},
		{
			Category:   "burgers",
			Key:        "veggie-burger",
			SKU:        "BRG-VEGGIE",
			Name:       "Veggie Burger",
			PriceCents: 2100,
		},
		{
			Category:   "sides",
			Key:        "fries",
			SKU:        "SIDE-FRIES",
			Name:       "Fries",
			PriceCents: 900,
		},
		{
			Category:   "drinks",
			Key:        "soda",
			SKU:        "DRK-SODA",
			Name:       "Soda",
			PriceCents: 600,
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, estID, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	staff := []staffSeed{
		{Email: "owner@" + opts.EstablishmentKey + ".local", Name: "Owner", Role: domain.RoleOwner},
		{Email: "cashier@" + opts.EstablishmentKey + ".local", Name: "Cashier", Role: domain.RoleCashier},
		{Email: "kitchen@" + opts.EstablishmentKey + ".local", Name: "Kitchen", Role: domain.RoleKitchen},
	}
	for _, s := range staff {
		if err := upsertStaff(ctx, pool, estID, s, string(hash)); err != nil {
			return fmt.Errorf("upsert staff %s: %w", s.Email, err)
		}
	}

	minOrder, maxDiscount, limit := int64(3000), int64(1500), 100
	coupons := []couponSeed{
		{Code: "SAVE10", Kind: domain.DiscountPercentage, Value: "10", MaxCents: &maxDiscount},
		{Code: "FIVEOFF", Kind: domain.DiscountFixed, Value: "5.00", MinOrderCents: &minOrder, UsageLimit: &limit},
	}
	for _, c := range coupons {
		if err := upsertCoupon(ctx, pool, estID, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	return nil
}

func ensureEstablishment(ctx context.Context, pool *pgxpool.Pool, key, name string) (string, error) {
	const q = `
INSERT INTO establishments (key, name, currency, default_delivery_fee_cents, service_fee_cents)
VALUES ($1, $2, 'BRL', 800, 0)
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, key, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, estID string, c categorySeed) (string, error) {
	const q = `
INSERT INTO categories (establishment_id, key, name, position)
VALUES ($1, $2, $3, $4)
ON CONFLICT (establishment_id, key) DO UPDATE
SET name = EXCLUDED.name,
    position = EXCLUDED.position
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, estID, c.Key, c.Name, c.Position).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, estID, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (establishment_id, category_id, key, sku, name, description, price_cents, currency, modifiers)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, 'BRL', $8)
ON CONFLICT (establishment_id, key) DO UPDATE
SET category_id = EXCLUDED.category_id,
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    modifiers = EXCLUDED.modifiers
`
	modifiers := p.Modifiers
	if modifiers == nil {
		modifiers = []domain.Modifier{}
	}
	raw, err := json.Marshal(modifiers)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, q, estID, categoryID, p.Key, p.SKU, p.Name, p.Description, p.PriceCents, raw)
	return err
}

func upsertStaff(ctx context.Context, pool *pgxpool.Pool, estID string, s staffSeed, hash string) error {
	const q = `
INSERT INTO staff (establishment_id, email, password_hash, name, role)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (establishment_id, email) DO UPDATE
SET password_hash = EXCLUDED.password_hash,
    name = EXCLUDED.name,
    role = EXCLUDED.role
`
	_, err := pool.Exec(ctx, q, estID, s.Email, hash, s.Name, s.Role)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, estID string, c couponSeed) error {
	const q = `
INSERT INTO coupons (establishment_id, code, kind, value, min_order_value_cents, max_discount_cents, usage_limit)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
ON CONFLICT (establishment_id, code) DO UPDATE
SET kind = EXCLUDED.kind,
    value = EXCLUDED.value,
    min_order_value_cents = EXCLUDED.min_order_value_cents,
    max_discount_cents = EXCLUDED.max_discount_cents,
    usage_limit = EXCLUDED.usage_limit,
    is_active = true
`
	_, err := pool.Exec(ctx, q, estID, c.Code, string(c.Kind), c.Value, c.MinOrderCents, c.MaxCents, c.UsageLimit)
	return err
}
