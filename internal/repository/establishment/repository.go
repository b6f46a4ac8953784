package establishment

import (
	"context"

	"restaurant-ops/internal/domain"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Establishment, error)
	Create(ctx context.Context, e domain.Establishment) (*domain.Establishment, error)
}
