package product

import (
	"context"

	"restaurant-ops/internal/domain"
)

type Repository interface {
	ListByEstablishment(ctx context.Context, establishmentID string) ([]domain.Product, error)
	GetByID(ctx context.Context, establishmentID, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, establishmentID string, ids []string) (map[string]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
