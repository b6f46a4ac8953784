package category

import (
	"context"

	"restaurant-ops/internal/domain"
)

// Repository stores the menu sections of each establishment.
type Repository interface {
	// ListByEstablishment returns categories in display order.
	ListByEstablishment(ctx context.Context, establishmentID string) ([]domain.Category, error)
	// Upsert inserts a category or renames and repositions the one with the
	// same key. The stored ID is returned either way.
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}
