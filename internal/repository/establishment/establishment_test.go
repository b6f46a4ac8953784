package establishment

import (
	"context"
	"errors"
	"testing"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/testdb"
)

func TestPostgres_CreateAndGetByKey(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Establishment{Key: "bistro", Name: "Bistro", Currency: "BRL", DefaultDeliveryFeeCents: 800})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id, got %+v", created)
	}

	got, err := repo.GetByKey(ctx, "bistro")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.DefaultDeliveryFeeCents != 800 || got.Currency != "BRL" {
		t.Fatalf("unexpected establishment %+v", got)
	}

	if _, err := repo.Create(ctx, domain.Establishment{Key: "bistro", Name: "Other", Currency: "BRL"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := repo.GetByKey(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
