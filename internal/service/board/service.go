// Package board keeps one kanban per establishment and feeds it from the
// order store.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"
	orderrepo "restaurant-ops/internal/repository/order"
)

// terminalWindow bounds how long completed and cancelled cards stay visible.
const terminalWindow = 12 * time.Hour

type orderLister interface {
	Get(ctx context.Context, establishmentID, id string) (*domain.Order, error)
	List(ctx context.Context, establishmentID string, filter orderrepo.ListFilter) ([]domain.Order, error)
}

type Service struct {
	orders  orderLister
	remote  lifecycle.StatusUpdater
	locks   lifecycle.Locker
	timeout time.Duration
	logger  *log.Logger
	now     func() time.Time

	mu      sync.Mutex
	kanbans map[string]*lifecycle.Kanban
}

func New(orders orderLister, remote lifecycle.StatusUpdater, locks lifecycle.Locker, timeout time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:  orders,
		remote:  remote,
		locks:   locks,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
		kanbans: make(map[string]*lifecycle.Kanban),
	}
}

// Columns refreshes the establishment's board from the store and returns it.
func (s *Service) Columns(ctx context.Context, establishmentID string) ([]lifecycle.Column, error) {
	k := s.kanban(establishmentID)
	if err := s.refresh(ctx, establishmentID, k); err != nil {
		return nil, err
	}
	return k.Snapshot().Columns(), nil
}

// Move drags a card. A card unknown to this process is loaded once before
// the move is retried, so orders created elsewhere can be moved.
func (s *Service) Move(ctx context.Context, establishmentID string, req lifecycle.MoveRequest) (*domain.Order, error) {
	return s.withRefresh(ctx, establishmentID, func(k *lifecycle.Kanban) (*domain.Order, error) {
		return k.Move(ctx, req)
	})
}

func (s *Service) Cancel(ctx context.Context, establishmentID string, req lifecycle.MoveRequest) (*domain.Order, error) {
	return s.withRefresh(ctx, establishmentID, func(k *lifecycle.Kanban) (*domain.Order, error) {
		return k.Cancel(ctx, req)
	})
}

// Transition applies a status change requested outside the board, such as
// a direct status update. The card is first reloaded from the store, then the
// change runs through the same lock and rollback as a drag so that at most
// one transition per order is in flight.
func (s *Service) Transition(ctx context.Context, establishmentID string, req lifecycle.MoveRequest) (*domain.Order, error) {
	current, err := s.orders.Get(ctx, establishmentID, req.OrderID)
	if err != nil {
		return nil, err
	}
	k := s.kanban(establishmentID)
	k.Track(*current)
	if req.Status == domain.StatusCancelled {
		return k.Cancel(ctx, req)
	}
	return k.Move(ctx, req)
}

// Track records an order change on the board of its establishment, if that
// board is loaded.
func (s *Service) Track(order domain.Order) {
	s.mu.Lock()
	k, ok := s.kanbans[order.EstablishmentID]
	s.mu.Unlock()
	if ok {
		k.Track(order)
	}
}

func (s *Service) withRefresh(ctx context.Context, establishmentID string, fn func(k *lifecycle.Kanban) (*domain.Order, error)) (*domain.Order, error) {
	k := s.kanban(establishmentID)
	order, err := fn(k)
	var terr *lifecycle.TransitionError
	if !errors.As(err, &terr) || terr.Reason != lifecycle.ReasonUnknownOrder {
		return order, err
	}
	if err := s.refresh(ctx, establishmentID, k); err != nil {
		return nil, err
	}
	return fn(k)
}

func (s *Service) refresh(ctx context.Context, establishmentID string, k *lifecycle.Kanban) error {
	active, err := s.orders.List(ctx, establishmentID, orderrepo.ListFilter{Statuses: activeStatuses()})
	if err != nil {
		return fmt.Errorf("list active orders: %w", err)
	}
	since := s.now().Add(-terminalWindow)
	done, err := s.orders.List(ctx, establishmentID, orderrepo.ListFilter{
		Statuses: []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled},
		Since:    &since,
	})
	if err != nil {
		return fmt.Errorf("list finished orders: %w", err)
	}
	k.Sync(append(active, done...))
	return nil
}

func (s *Service) kanban(establishmentID string) *lifecycle.Kanban {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.kanbans[establishmentID]
	if !ok {
		k = lifecycle.NewKanban(establishmentID, s.remote, s.locks, s.timeout, s.logger)
		s.kanbans[establishmentID] = k
	}
	return k
}

func activeStatuses() []domain.OrderStatus {
	out := make([]domain.OrderStatus, 0, len(domain.OrderStatuses))
	for _, st := range domain.OrderStatuses {
		if !lifecycle.IsTerminal(st) {
			out = append(out, st)
		}
	}
	return out
}
