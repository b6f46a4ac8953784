// Package lifecycle implements the order status state machine and the
// optimistic reconciliation used by the kanban board.
//
// Orders move through a linear pipeline with one branch:
//
//	pending -> confirmed -> preparing -> ready -> completed
//	                                      ready -> delivering -> completed  (delivery orders only)
//
// Every non-terminal status may also be cancelled. Completed and cancelled
// are terminal.
package lifecycle

import "restaurant-ops/internal/domain"

var pipeline = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPending:    {domain.StatusConfirmed},
	domain.StatusConfirmed:  {domain.StatusPreparing},
	domain.StatusPreparing:  {domain.StatusReady},
	domain.StatusReady:      {domain.StatusCompleted, domain.StatusDelivering},
	domain.StatusDelivering: {domain.StatusCompleted},
}

// AllowedNextStatuses returns the pipeline successors of current for an order
// of the given type. Cancellation is not included; see CanCancel.
func AllowedNextStatuses(current domain.OrderStatus, typ domain.OrderType) []domain.OrderStatus {
	next := pipeline[current]
	out := make([]domain.OrderStatus, 0, len(next))
	for _, s := range next {
		if s == domain.StatusDelivering && typ != domain.OrderTypeDelivery {
			continue
		}
		out = append(out, s)
	}
	return out
}

// IsTerminal reports whether no transition may leave status.
func IsTerminal(status domain.OrderStatus) bool {
	return status == domain.StatusCompleted || status == domain.StatusCancelled
}

// CanCancel reports whether an order in status may be cancelled.
func CanCancel(status domain.OrderStatus) bool {
	if IsTerminal(status) {
		return false
	}
	_, known := pipeline[status]
	return known
}

// IsAllowed reports whether target is a pipeline successor of current.
func IsAllowed(current, target domain.OrderStatus, typ domain.OrderType) bool {
	for _, s := range AllowedNextStatuses(current, typ) {
		if s == target {
			return true
		}
	}
	return false
}

// CanTransition accepts pipeline edges and the cancel edge.
func CanTransition(current, target domain.OrderStatus, typ domain.OrderType) bool {
	if target == domain.StatusCancelled {
		return CanCancel(current)
	}
	return IsAllowed(current, target, typ)
}
