package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"restaurant-ops/internal/domain"
)

// DefaultTransitionTimeout bounds the remote status update.
const DefaultTransitionTimeout = 5 * time.Second

// lockGrace keeps the lock alive slightly past the remote timeout so the
// holder always releases it before it can expire.
const lockGrace = 2 * time.Second

// StatusUpdate is the remote request issued for a confirmed move.
type StatusUpdate struct {
	EstablishmentID string
	OrderID         string
	Expected        domain.OrderStatus
	Status          domain.OrderStatus
	Notes           string
	ActorID         string
}

// StatusUpdater persists a status change and returns the authoritative order.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, upd StatusUpdate) (*domain.Order, error)
}

// MoveRequest asks the board to move one card. A non-empty Expected makes
// the move apply only while the card is still in that status.
type MoveRequest struct {
	OrderID  string
	Status   domain.OrderStatus
	Expected domain.OrderStatus
	Notes    string
	ActorID  string
}

// Kanban owns one establishment's board and reconciles optimistic moves with
// the remote order service.
type Kanban struct {
	establishmentID string
	remote          StatusUpdater
	locks           Locker
	timeout         time.Duration
	logger          *log.Logger

	mu      sync.Mutex
	board   Board
	pending map[string]struct{}
}

func NewKanban(establishmentID string, remote StatusUpdater, locks Locker, timeout time.Duration, logger *log.Logger) *Kanban {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if locks == nil {
		locks = NewMemoryLocker()
	}
	if timeout <= 0 {
		timeout = DefaultTransitionTimeout
	}
	return &Kanban{
		establishmentID: establishmentID,
		remote:          remote,
		locks:           locks,
		timeout:         timeout,
		logger:          logger,
		pending:         make(map[string]struct{}),
	}
}

// Snapshot returns the current board.
func (k *Kanban) Snapshot() Board {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.board
}

// Sync replaces the board with a fresh listing. Cards with a transition in
// flight keep their optimistic state until the transition resolves.
func (k *Kanban) Sync(orders []domain.Order) {
	k.mu.Lock()
	defer k.mu.Unlock()

	fresh := NewBoard(orders)
	for id := range k.pending {
		if card, ok := k.board.Card(id); ok {
			fresh = fresh.Upsert(card)
		}
	}
	k.board = fresh
}

// Track adds or refreshes a single card, e.g. after an order is created.
func (k *Kanban) Track(order domain.Order) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, inFlight := k.pending[order.ID]; inFlight {
		return
	}
	k.board = k.board.Upsert(order)
}

// Move drags a card along the pipeline. Cancellation goes through Cancel.
func (k *Kanban) Move(ctx context.Context, req MoveRequest) (*domain.Order, error) {
	card, err := k.card(req)
	if err != nil {
		return nil, err
	}
	if !IsAllowed(card.Status, req.Status, card.Type) {
		return nil, &TransitionError{OrderID: card.ID, From: card.Status, Attempted: req.Status, Reason: ReasonIllegal, Err: ErrIllegalTransition}
	}
	return k.transition(ctx, req)
}

// Cancel moves a card to cancelled from any non-terminal status.
func (k *Kanban) Cancel(ctx context.Context, req MoveRequest) (*domain.Order, error) {
	req.Status = domain.StatusCancelled
	card, err := k.card(req)
	if err != nil {
		return nil, err
	}
	if !CanCancel(card.Status) {
		return nil, &TransitionError{OrderID: card.ID, From: card.Status, Attempted: req.Status, Reason: ReasonIllegal, Err: ErrIllegalTransition}
	}
	return k.transition(ctx, req)
}

// card returns the card a request starts from. A card with a move in flight
// shows its optimistic status, so such requests are turned away before any
// table check runs against that status.
func (k *Kanban) card(req MoveRequest) (domain.Order, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	card, ok := k.board.Card(req.OrderID)
	if !ok {
		return domain.Order{}, &TransitionError{OrderID: req.OrderID, Attempted: req.Status, Reason: ReasonUnknownOrder, Err: ErrUnknownOrder}
	}
	if _, inFlight := k.pending[req.OrderID]; inFlight {
		return domain.Order{}, &TransitionError{OrderID: req.OrderID, From: card.Status, Attempted: req.Status, Reason: ReasonInFlight, Err: ErrTransitionInFlight}
	}
	if req.Expected != "" && card.Status != req.Expected {
		return domain.Order{}, &TransitionError{OrderID: req.OrderID, From: card.Status, Attempted: req.Status, Reason: ReasonStale, Err: ErrStaleStatus}
	}
	return card, nil
}

func (k *Kanban) transition(ctx context.Context, req MoveRequest) (*domain.Order, error) {
	key := k.lockKey(req.OrderID)
	token, ok, err := k.locks.TryLock(ctx, key, k.timeout+lockGrace)
	if err != nil {
		return nil, &TransitionError{OrderID: req.OrderID, Attempted: req.Status, Reason: ReasonLockUnavailable, Err: fmt.Errorf("%w: %w", ErrLockUnavailable, err)}
	}
	if !ok {
		from := k.currentStatus(req.OrderID)
		return nil, &TransitionError{OrderID: req.OrderID, From: from, Attempted: req.Status, Reason: ReasonInFlight, Err: ErrTransitionInFlight}
	}
	defer func() {
		if err := k.locks.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			k.logger.Printf("kanban: unlock establishment_id=%s order_id=%s error=%v", k.establishmentID, req.OrderID, err)
		}
	}()

	k.mu.Lock()
	before, _ := k.board.Card(req.OrderID)
	board, rollback, err := k.board.Apply(req.OrderID, req.Status)
	if err != nil {
		k.mu.Unlock()
		return nil, err
	}
	k.board = board
	k.pending[req.OrderID] = struct{}{}
	k.mu.Unlock()

	updated, err := k.callRemote(ctx, StatusUpdate{
		EstablishmentID: k.establishmentID,
		OrderID:         req.OrderID,
		Expected:        before.Status,
		Status:          req.Status,
		Notes:           req.Notes,
		ActorID:         req.ActorID,
	})

	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.pending, req.OrderID)

	if err != nil {
		k.board = rollback(k.board)
		reason, sentinel := ReasonRejected, ErrRemoteRejected
		switch {
		case errors.Is(err, ErrTransitionTimeout), errors.Is(err, context.DeadlineExceeded):
			reason, sentinel = ReasonTimeout, ErrTransitionTimeout
		case errors.Is(err, domain.ErrConflict):
			reason, sentinel = ReasonStale, ErrStaleStatus
		}
		k.logger.Printf("kanban: rollback establishment_id=%s order_id=%s from=%s to=%s reason=%s error=%v",
			k.establishmentID, req.OrderID, before.Status, req.Status, reason, err)
		if !errors.Is(err, sentinel) {
			err = fmt.Errorf("%w: %w", sentinel, err)
		}
		return nil, &TransitionError{OrderID: req.OrderID, From: before.Status, Attempted: req.Status, Reason: reason, Err: err}
	}

	if updated == nil {
		confirmed, _ := k.board.Card(req.OrderID)
		return &confirmed, nil
	}
	k.board = k.board.Upsert(*updated)
	return updated, nil
}

// callRemote waits at most k.timeout even if the remote ignores its context.
func (k *Kanban) callRemote(ctx context.Context, upd StatusUpdate) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	type result struct {
		order *domain.Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		order, err := k.remote.UpdateStatus(ctx, upd)
		done <- result{order: order, err: err}
	}()

	select {
	case r := <-done:
		return r.order, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTransitionTimeout, k.timeout)
		}
		return nil, ctx.Err()
	}
}

func (k *Kanban) currentStatus(orderID string) domain.OrderStatus {
	k.mu.Lock()
	defer k.mu.Unlock()
	card, _ := k.board.Card(orderID)
	return card.Status
}

func (k *Kanban) lockKey(orderID string) string {
	return "order-transition:" + k.establishmentID + ":" + orderID
}
