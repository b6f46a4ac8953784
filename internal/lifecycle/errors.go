package lifecycle

import (
	"errors"
	"fmt"

	"restaurant-ops/internal/domain"
)

var (
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrTransitionInFlight = errors.New("another transition is in flight for this order")
	ErrTransitionTimeout  = errors.New("status update timed out")
	ErrRemoteRejected     = errors.New("status update rejected")
	ErrUnknownOrder       = errors.New("order is not on the board")
	ErrLockUnavailable    = errors.New("transition lock unavailable")
	ErrStaleStatus        = errors.New("order status changed since it was read")
)

// Reason is a stable, machine-readable failure cause.
type Reason string

const (
	ReasonIllegal         Reason = "illegal_transition"
	ReasonInFlight        Reason = "in_flight"
	ReasonTimeout         Reason = "timeout"
	ReasonRejected        Reason = "rejected"
	ReasonUnknownOrder    Reason = "unknown_order"
	ReasonLockUnavailable Reason = "lock_unavailable"
	ReasonStale           Reason = "stale_status"
)

// TransitionError carries what was attempted and why it failed so callers
// can notify the user and restore their view.
type TransitionError struct {
	OrderID   string
	From      domain.OrderStatus
	Attempted domain.OrderStatus
	Reason    Reason
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: %s -> %s: %s: %v", e.OrderID, e.From, e.Attempted, e.Reason, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-issuing the same move can succeed.
func (e *TransitionError) Retryable() bool {
	switch e.Reason {
	case ReasonTimeout, ReasonRejected, ReasonInFlight, ReasonLockUnavailable:
		return true
	}
	return false
}
