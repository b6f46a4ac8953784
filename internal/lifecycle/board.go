package lifecycle

import (
	"sort"

	"restaurant-ops/internal/domain"
)

// Board is an immutable snapshot of orders laid out in status columns.
// Every mutating method returns a new Board.
type Board struct {
	cards []domain.Order
}

// Column is one status lane of the board.
type Column struct {
	Status domain.OrderStatus `json:"status"`
	Orders []domain.Order     `json:"orders"`
}

// Rollback restores a card to its pre-move snapshot in whichever board is
// current when the move fails.
type Rollback func(current Board) Board

func NewBoard(orders []domain.Order) Board {
	cards := make([]domain.Order, len(orders))
	copy(cards, orders)
	sortCards(cards)
	return Board{cards: cards}
}

// Card returns the order with the given id.
func (b Board) Card(id string) (domain.Order, bool) {
	for _, c := range b.cards {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Order{}, false
}

func (b Board) Len() int {
	return len(b.cards)
}

// Orders returns a copy of all cards, oldest first.
func (b Board) Orders() []domain.Order {
	out := make([]domain.Order, len(b.cards))
	copy(out, b.cards)
	return out
}

// Columns groups the cards by status in pipeline order. Every status has a
// column, possibly empty.
func (b Board) Columns() []Column {
	byStatus := make(map[domain.OrderStatus][]domain.Order, len(domain.OrderStatuses))
	for _, c := range b.cards {
		byStatus[c.Status] = append(byStatus[c.Status], c)
	}
	cols := make([]Column, 0, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		orders := byStatus[s]
		if orders == nil {
			orders = []domain.Order{}
		}
		cols = append(cols, Column{Status: s, Orders: orders})
	}
	return cols
}

// Upsert replaces the card with the same id or adds it.
func (b Board) Upsert(order domain.Order) Board {
	cards := make([]domain.Order, 0, len(b.cards)+1)
	replaced := false
	for _, c := range b.cards {
		if c.ID == order.ID {
			cards = append(cards, order)
			replaced = true
			continue
		}
		cards = append(cards, c)
	}
	if !replaced {
		cards = append(cards, order)
		sortCards(cards)
	}
	return Board{cards: cards}
}

func (b Board) Remove(id string) Board {
	cards := make([]domain.Order, 0, len(b.cards))
	for _, c := range b.cards {
		if c.ID != id {
			cards = append(cards, c)
		}
	}
	return Board{cards: cards}
}

// Apply optimistically moves a card to target. Illegal moves leave the board
// untouched and return a *TransitionError.
func (b Board) Apply(orderID string, target domain.OrderStatus) (Board, Rollback, error) {
	card, ok := b.Card(orderID)
	if !ok {
		return b, nil, &TransitionError{OrderID: orderID, Attempted: target, Reason: ReasonUnknownOrder, Err: ErrUnknownOrder}
	}
	tr, err := ApplyOptimisticTransition(card, target)
	if err != nil {
		return b, nil, err
	}
	rollback := func(current Board) Board {
		return current.Upsert(tr.Rollback())
	}
	return b.Upsert(tr.Order), rollback, nil
}

func sortCards(cards []domain.Order) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].Number < cards[j].Number
		}
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}
