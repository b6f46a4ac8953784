package order

import (
	"context"
	"errors"
	"time"

	"restaurant-ops/internal/domain"
)

// ErrCouponExhausted is returned when a coupon cannot be redeemed at
// commit time: it was deactivated or its usage limit was reached meanwhile.
var ErrCouponExhausted = errors.New("coupon no longer available")

type CreateInput struct {
	Order        domain.Order
	RedeemCoupon bool
	ActorID      string
}

type ListFilter struct {
	Statuses []domain.OrderStatus
	Since    *time.Time
	Limit    int
}

// StatusChange moves an order from From to To only if it is still in From.
type StatusChange struct {
	EstablishmentID string
	OrderID         string
	From            domain.OrderStatus
	To              domain.OrderStatus
	Notes           string
	ActorID         string
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, establishmentID, id string) (*domain.Order, error)
	List(ctx context.Context, establishmentID string, filter ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, change StatusChange) (*domain.Order, error)
	Events(ctx context.Context, establishmentID, orderID string) ([]domain.StatusEvent, error)
}
