package lifecycle

import (
	"time"

	"restaurant-ops/internal/domain"
)

// Transition is an optimistic status change awaiting confirmation.
type Transition struct {
	Order    domain.Order
	Previous domain.Order
}

// Rollback returns the order as it was before the transition.
func (t Transition) Rollback() domain.Order {
	return t.Previous
}

// ApplyOptimisticTransition returns a copy of order moved to target. The
// input is left untouched so it can be restored on failure.
func ApplyOptimisticTransition(order domain.Order, target domain.OrderStatus) (Transition, error) {
	if !CanTransition(order.Status, target, order.Type) {
		return Transition{}, &TransitionError{
			OrderID:   order.ID,
			From:      order.Status,
			Attempted: target,
			Reason:    ReasonIllegal,
			Err:       ErrIllegalTransition,
		}
	}
	updated := order
	updated.Status = target
	updated.UpdatedAt = time.Now().UTC()
	return Transition{Order: updated, Previous: order}, nil
}
