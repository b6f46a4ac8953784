package staff

import (
	"context"

	"restaurant-ops/internal/domain"
)

// Repository persists and fetches dashboard staff accounts.
type Repository interface {
	Create(ctx context.Context, s domain.Staff) (*domain.Staff, error)
	GetByEmail(ctx context.Context, establishmentID, email string) (*domain.Staff, error)
	GetByID(ctx context.Context, establishmentID, id string) (*domain.Staff, error)
}
