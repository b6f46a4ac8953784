package coupon

import (
	"context"

	"restaurant-ops/internal/domain"
)

type Repository interface {
	GetByCode(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error)
	List(ctx context.Context, establishmentID string) ([]domain.DiscountRule, error)
	Create(ctx context.Context, rule domain.DiscountRule) (*domain.DiscountRule, error)
	SetActive(ctx context.Context, establishmentID, code string, active bool) (*domain.DiscountRule, error)
}
