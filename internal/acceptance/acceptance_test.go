package acceptance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"
	"restaurant-ops/internal/pricing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

const (
	orderID = "order-1"
	lockKey = "order-transition:est-1:" + orderID
)

type remoteStub struct {
	hang  bool
	err   error
	calls int
}

func (r *remoteStub) UpdateStatus(ctx context.Context, upd lifecycle.StatusUpdate) (*domain.Order, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &domain.Order{ID: upd.OrderID, Status: upd.Status, Type: domain.OrderTypeDelivery}, nil
}

type scenarioContext struct {
	orderType domain.OrderType
	items     []domain.LineItem
	coupon    *domain.DiscountRule
	totals    pricing.Totals

	order   domain.Order
	remote  *remoteStub
	locks   *lifecycle.MemoryLocker
	kanban  *lifecycle.Kanban
	moveErr error
}

func (s *scenarioContext) reset() {
	*s = scenarioContext{remote: &remoteStub{}, locks: lifecycle.NewMemoryLocker()}
}

func cents(v string) (int64, error) {
	return pricing.ParseAmount(v)
}

func (s *scenarioContext) aTakeoutOrder() error {
	s.orderType = domain.OrderTypeTakeout
	return nil
}

func (s *scenarioContext) itemsPriced(qty int, price string) error {
	c, err := cents(price)
	if err != nil {
		return err
	}
	s.items = append(s.items, domain.LineItem{ID: fmt.Sprintf("line-%d", len(s.items)+1), Name: "Item", UnitPriceCents: c, Quantity: qty})
	return nil
}

func (s *scenarioContext) aPercentageCoupon(value string) error {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}
	s.coupon = &domain.DiscountRule{Code: "PCT", Kind: domain.DiscountPercentage, Value: v, IsActive: true}
	return nil
}

func (s *scenarioContext) aFixedCoupon(value string) error {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}
	s.coupon = &domain.DiscountRule{Code: "FIXED", Kind: domain.DiscountFixed, Value: v, IsActive: true}
	return nil
}

func (s *scenarioContext) theCouponRequiresAMinimumOf(value string) error {
	if s.coupon == nil {
		return errors.New("no coupon configured")
	}
	c, err := cents(value)
	if err != nil {
		return err
	}
	s.coupon.MinOrderValueCents = &c
	return nil
}

func (s *scenarioContext) theTotalsAreComputed() error {
	s.totals = pricing.ComputeTotals(pricing.Context{
		Items:     s.items,
		OrderType: s.orderType,
		Discount:  s.coupon,
		At:        time.Now(),
	})
	return nil
}

func expectMoney(label string, got int64, want string) error {
	if pricing.FormatCents(got) != want {
		return fmt.Errorf("expected %s %s, got %s", label, want, pricing.FormatCents(got))
	}
	return nil
}

func (s *scenarioContext) theSubtotalIs(want string) error {
	return expectMoney("subtotal", s.totals.SubtotalCents, want)
}

func (s *scenarioContext) theDiscountIs(want string) error {
	return expectMoney("discount", s.totals.DiscountCents, want)
}

func (s *scenarioContext) theTotalIs(want string) error {
	return expectMoney("total", s.totals.TotalCents, want)
}

func (s *scenarioContext) theCouponIsReportedAs(want string) error {
	got := pricing.CheckDiscount(s.coupon, s.totals.SubtotalCents, time.Now())
	if string(got) != want {
		return fmt.Errorf("expected coupon reason %s, got %s", want, got)
	}
	return nil
}

func (s *scenarioContext) anOrderInStatus(typ, status string) error {
	t, ok := domain.ParseOrderType(typ)
	if !ok {
		return fmt.Errorf("unknown order type %q", typ)
	}
	st, ok := domain.ParseOrderStatus(status)
	if !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	s.order = domain.Order{ID: orderID, Type: t, Status: st, CreatedAt: time.Now()}
	return nil
}

func (s *scenarioContext) anOrderOnTheBoard(typ, status string) error {
	if err := s.anOrderInStatus(typ, status); err != nil {
		return err
	}
	s.kanban = lifecycle.NewKanban("est-1", s.remote, s.locks, 50*time.Millisecond, nil)
	s.kanban.Sync([]domain.Order{s.order})
	return nil
}

func (s *scenarioContext) theAllowedNextStatusesAre(want string) error {
	var got []string
	for _, st := range lifecycle.AllowedNextStatuses(s.order.Status, s.order.Type) {
		got = append(got, string(st))
	}
	if strings.Join(got, ",") != want {
		return fmt.Errorf("expected %s, got %s", want, strings.Join(got, ","))
	}
	return nil
}

func (s *scenarioContext) theOrderServiceDoesNotAnswer() error {
	s.remote.hang = true
	return nil
}

func (s *scenarioContext) theOrderServiceRejectsTheUpdate() error {
	s.remote.err = errors.New("order service unavailable")
	return nil
}

func (s *scenarioContext) anotherMoveOfTheCardIsInFlight() error {
	_, ok, err := s.locks.TryLock(context.Background(), lockKey, time.Minute)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("transition lock already held")
	}
	return nil
}

func (s *scenarioContext) theCardIsMovedTo(status string) error {
	st, ok := domain.ParseOrderStatus(status)
	if !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	_, s.moveErr = s.kanban.Move(context.Background(), lifecycle.MoveRequest{OrderID: orderID, Status: st})
	return nil
}

func (s *scenarioContext) theMoveFailsWithReason(want string) error {
	var terr *lifecycle.TransitionError
	if !errors.As(s.moveErr, &terr) {
		return fmt.Errorf("expected transition error, got %v", s.moveErr)
	}
	if string(terr.Reason) != want {
		return fmt.Errorf("expected reason %s, got %s", want, terr.Reason)
	}
	return nil
}

func (s *scenarioContext) theMoveSucceeds() error {
	return s.moveErr
}

func (s *scenarioContext) theOrderServiceWasNotCalled() error {
	if s.remote.calls != 0 {
		return fmt.Errorf("expected no remote calls, got %d", s.remote.calls)
	}
	return nil
}

func (s *scenarioContext) theCardIsInColumn(status string) error {
	card, ok := s.kanban.Snapshot().Card(orderID)
	if !ok {
		return errors.New("card missing from board")
	}
	if string(card.Status) != status {
		return fmt.Errorf("expected card in %s, got %s", status, card.Status)
	}
	return nil
}

func (s *scenarioContext) noTransitionLockIsHeld() error {
	if s.locks.Held(lockKey) {
		return errors.New("transition lock still held")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	sc := &scenarioContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	// Pricing
	ctx.Step(`^a takeout order$`, sc.aTakeoutOrder)
	ctx.Step(`^(\d+) items priced "([^"]*)"$`, sc.itemsPriced)
	ctx.Step(`^a percentage coupon of "([^"]*)"$`, sc.aPercentageCoupon)
	ctx.Step(`^a fixed coupon of "([^"]*)"$`, sc.aFixedCoupon)
	ctx.Step(`^the coupon requires a minimum order of "([^"]*)"$`, sc.theCouponRequiresAMinimumOf)
	ctx.Step(`^the totals are computed$`, sc.theTotalsAreComputed)
	ctx.Step(`^the subtotal is "([^"]*)"$`, sc.theSubtotalIs)
	ctx.Step(`^the discount is "([^"]*)"$`, sc.theDiscountIs)
	ctx.Step(`^the total is "([^"]*)"$`, sc.theTotalIs)
	ctx.Step(`^the coupon is reported as "([^"]*)"$`, sc.theCouponIsReportedAs)

	// Lifecycle
	ctx.Step(`^a "([^"]*)" order in status "([^"]*)"$`, sc.anOrderInStatus)
	ctx.Step(`^a "([^"]*)" order in status "([^"]*)" on the board$`, sc.anOrderOnTheBoard)
	ctx.Step(`^the allowed next statuses are "([^"]*)"$`, sc.theAllowedNextStatusesAre)
	ctx.Step(`^the order service does not answer$`, sc.theOrderServiceDoesNotAnswer)
	ctx.Step(`^the order service rejects the update$`, sc.theOrderServiceRejectsTheUpdate)
	ctx.Step(`^another move of the card is in flight$`, sc.anotherMoveOfTheCardIsInFlight)
	ctx.Step(`^the card is moved to "([^"]*)"$`, sc.theCardIsMovedTo)
	ctx.Step(`^the move fails with reason "([^"]*)"$`, sc.theMoveFailsWithReason)
	ctx.Step(`^the move succeeds$`, sc.theMoveSucceeds)
	ctx.Step(`^the order service was not called$`, sc.theOrderServiceWasNotCalled)
	ctx.Step(`^the card is in column "([^"]*)"$`, sc.theCardIsInColumn)
	ctx.Step(`^no transition lock is held$`, sc.noTransitionLockIsHeld)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
