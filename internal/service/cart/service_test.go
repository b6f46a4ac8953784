package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/pricing"
	ordersvc "restaurant-ops/internal/service/order"

	"github.com/shopspring/decimal"
)

type stubProducts map[string]domain.Product

// barrierProducts holds every lookup until parties lookups are waiting, so
// concurrent updates all read the cart before any of them saves.
type barrierProducts struct {
	stubProducts
	arrived chan struct{}
	release chan struct{}
}

func (b *barrierProducts) Product(ctx context.Context, establishmentID, id string) (*domain.Product, error) {
	b.arrived <- struct{}{}
	<-b.release
	return b.stubProducts.Product(ctx, establishmentID, id)
}

func (s stubProducts) Product(_ context.Context, _ string, id string) (*domain.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type stubCoupons map[string]domain.DiscountRule

func (s stubCoupons) Lookup(_ context.Context, _ string, code string) (*domain.DiscountRule, error) {
	r, ok := s[code]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

type stubOrders struct {
	coupons   stubCoupons
	created   []ordersvc.CreateInput
	createErr error
}

func (s *stubOrders) Price(_ context.Context, est domain.Establishment, typ domain.OrderType, lines []domain.LineItem, code string, fee *int64) (*ordersvc.Quote, error) {
	var rule *domain.DiscountRule
	if r, ok := s.coupons[code]; ok {
		rule = &r
	}
	at := time.Now()
	totals := pricing.ComputeTotals(pricing.Context{
		Items:                    lines,
		OrderType:                typ,
		Discount:                 rule,
		DeliveryFeeOverrideCents: fee,
		DefaultDeliveryFeeCents:  est.DefaultDeliveryFeeCents,
		At:                       at,
	})
	return &ordersvc.Quote{Items: lines, Totals: totals, Coupon: rule, Discount: pricing.CheckDiscount(rule, totals.SubtotalCents, at)}, nil
}

func (s *stubOrders) Create(_ context.Context, est domain.Establishment, in ordersvc.CreateInput) (*domain.Order, error) {
	s.created = append(s.created, in)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.Order{ID: "order-1", EstablishmentID: est.ID, Number: 1, Status: domain.StatusPending, Type: in.Type}, nil
}

var testEstablishment = domain.Establishment{ID: "est", DefaultDeliveryFeeCents: 500}

func newTestService() (*Service, *MemoryStore, *stubOrders) {
	products := stubProducts{
		"pizza": {ID: "pizza", Name: "Margherita", PriceCents: 4500, Available: true,
			Modifiers: []domain.Modifier{{Key: "extra-cheese", PriceCents: 300}}},
		"soda": {ID: "soda", Name: "Soda", PriceCents: 700, Available: true},
		"gone": {ID: "gone", Name: "Seasonal", PriceCents: 900, Available: false},
	}
	coupons := stubCoupons{"TENOFF": {Code: "TENOFF", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(10), IsActive: true}}
	store := NewMemoryStore(time.Hour)
	orders := &stubOrders{coupons: coupons}
	return New(store, products, coupons, orders, nil), store, orders
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), testEstablishment, CreateInput{OrderType: "drone"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceCreateDefaultsToTakeout(t *testing.T) {
	svc, store, _ := newTestService()
	view, err := svc.Create(context.Background(), testEstablishment, CreateInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Cart.OrderType != domain.OrderTypeTakeout || view.Cart.Version != 1 || view.Totals.TotalCents != 0 {
		t.Fatalf("unexpected cart %+v", view)
	}
	if _, err := store.Get(context.Background(), "est", view.Cart.ID); err != nil {
		t.Fatalf("cart not stored: %v", err)
	}
}

func TestServiceUpdateRequiresActions(t *testing.T) {
	svc, _, _ := newTestService()
	view, _ := svc.Create(context.Background(), testEstablishment, CreateInput{})
	if _, err := svc.Update(context.Background(), testEstablishment, view.Cart.ID, UpdateInput{}, false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceUpdateFlow(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	view, err := svc.Create(ctx, testEstablishment, CreateInput{OrderType: domain.OrderTypeDelivery})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := view.Cart.ID

	view, err = svc.Update(ctx, testEstablishment, id, UpdateInput{Version: 1, Actions: []UpdateAction{
		{Action: "addLineItem", ProductID: "pizza", Quantity: 1, Modifiers: []string{"extra-cheese"}},
		{Action: "addLineItem", ProductID: "pizza", Quantity: 1, Modifiers: []string{"extra-cheese"}},
		{Action: "addLineItem", ProductID: "soda", Quantity: 2},
		{Action: "applyCoupon", Code: "TENOFF"},
	}}, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(view.Cart.Items) != 2 || view.Cart.Items[0].Quantity != 2 {
		t.Fatalf("expected merged pizza line, got %+v", view.Cart.Items)
	}
	// 2*4800 + 2*700 = 11000; 10% = 1100; +500 delivery
	if view.Totals.SubtotalCents != 11000 || view.Totals.DiscountCents != 1100 || view.Totals.TotalCents != 10400 {
		t.Fatalf("unexpected totals %+v", view.Totals)
	}
	if view.Cart.Version != 2 || view.DiscountReason != pricing.Applied {
		t.Fatalf("unexpected view %+v", view)
	}

	sodaID := view.Cart.Items[1].ID
	view, err = svc.Update(ctx, testEstablishment, id, UpdateInput{Actions: []UpdateAction{
		{Action: "changeLineItemQuantity", LineItemID: sodaID, Quantity: 0},
		{Action: "removeCoupon"},
		{Action: "setOrderType", OrderType: domain.OrderTypeTakeout},
	}}, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(view.Cart.Items) != 1 || view.Cart.CouponCode != "" || view.Totals.TotalCents != 9600 {
		t.Fatalf("unexpected view %+v", view)
	}

	if _, err := svc.Update(ctx, testEstablishment, id, UpdateInput{Version: 1, Actions: []UpdateAction{{Action: "removeCoupon"}}}, false); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale version, got %v", err)
	}
}

func TestServiceUpdateRejectsBadActions(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	view, _ := svc.Create(ctx, testEstablishment, CreateInput{})
	id := view.Cart.ID
	zero := int64(0)

	cases := []struct {
		name   string
		action UpdateAction
		want   error
	}{
		{"missing product id", UpdateAction{Action: "addLineItem", Quantity: 1}, domain.ErrInvalidInput},
		{"unknown product", UpdateAction{Action: "addLineItem", ProductID: "nope", Quantity: 1}, domain.ErrInvalidInput},
		{"unavailable product", UpdateAction{Action: "addLineItem", ProductID: "gone", Quantity: 1}, domain.ErrInvalidInput},
		{"non-positive quantity", UpdateAction{Action: "addLineItem", ProductID: "pizza", Quantity: 0}, domain.ErrInvalidInput},
		{"unknown line", UpdateAction{Action: "removeLineItem", LineItemID: "x"}, domain.ErrNotFound},
		{"unknown coupon", UpdateAction{Action: "applyCoupon", Code: "NOPE"}, domain.ErrInvalidInput},
		{"fee without staff", UpdateAction{Action: "setDeliveryFee", AmountCents: &zero}, domain.ErrInvalidInput},
		{"unsupported", UpdateAction{Action: "teleport"}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		_, err := svc.Update(ctx, testEstablishment, id, UpdateInput{Actions: []UpdateAction{
			{Action: "addLineItem", ProductID: "soda", Quantity: 1},
			tc.action,
		}}, false)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	stored, err := store.Get(ctx, "est", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Items) != 0 || stored.Version != 1 {
		t.Fatalf("failed updates must not be persisted, got %+v", stored)
	}
}

func TestServiceStaffDeliveryFeeOverride(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	view, _ := svc.Create(ctx, testEstablishment, CreateInput{OrderType: domain.OrderTypeDelivery})
	fee := int64(1200)
	view, err := svc.Update(ctx, testEstablishment, view.Cart.ID, UpdateInput{Actions: []UpdateAction{
		{Action: "addLineItem", ProductID: "soda", Quantity: 1},
		{Action: "setDeliveryFee", AmountCents: &fee},
	}}, true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Totals.DeliveryFeeCents != 1200 || view.Totals.TotalCents != 1900 {
		t.Fatalf("unexpected totals %+v", view.Totals)
	}
}

func TestServiceCheckout(t *testing.T) {
	svc, store, orders := newTestService()
	ctx := context.Background()
	view, _ := svc.Create(ctx, testEstablishment, CreateInput{OrderType: domain.OrderTypeDineIn, CustomerName: "Ana"})
	id := view.Cart.ID

	if _, err := svc.Checkout(ctx, testEstablishment, id, CheckoutInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected empty cart error, got %v", err)
	}

	if _, err := svc.Update(ctx, testEstablishment, id, UpdateInput{Actions: []UpdateAction{
		{Action: "addLineItem", ProductID: "pizza", Quantity: 1, Modifiers: []string{"extra-cheese"}, Notes: "well done"},
		{Action: "applyCoupon", Code: "TENOFF"},
	}}, false); err != nil {
		t.Fatalf("update: %v", err)
	}

	order, err := svc.Checkout(ctx, testEstablishment, id, CheckoutInput{TableLabel: "T2"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.Status != domain.StatusPending {
		t.Fatalf("unexpected order %+v", order)
	}
	in := orders.created[0]
	if in.Type != domain.OrderTypeDineIn || in.CouponCode != "TENOFF" || in.CustomerName != "Ana" || in.TableLabel != "T2" {
		t.Fatalf("unexpected create input %+v", in)
	}
	if len(in.Items) != 1 || in.Items[0].ProductID != "pizza" || in.Items[0].Modifiers[0] != "extra-cheese" || in.Items[0].Notes != "well done" {
		t.Fatalf("unexpected items %+v", in.Items)
	}
	if _, err := store.Get(ctx, "est", id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cart should be removed after checkout, got %v", err)
	}
}

func TestServiceCheckoutKeepsCartOnFailure(t *testing.T) {
	svc, store, orders := newTestService()
	ctx := context.Background()
	orders.createErr = domain.ErrConflict
	view, _ := svc.Create(ctx, testEstablishment, CreateInput{})
	if _, err := svc.Update(ctx, testEstablishment, view.Cart.ID, UpdateInput{Actions: []UpdateAction{{Action: "addLineItem", ProductID: "soda", Quantity: 1}}}, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Checkout(ctx, testEstablishment, view.Cart.ID, CheckoutInput{}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := store.Get(ctx, "est", view.Cart.ID); err != nil {
		t.Fatalf("cart must survive a failed checkout: %v", err)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	cart := &domain.Cart{ID: "c1", Version: 1, EstablishmentID: "est"}
	if err := store.Save(context.Background(), cart, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := store.Get(context.Background(), "est", "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestServiceConcurrentUpdatesWithSameVersion(t *testing.T) {
	products := &barrierProducts{
		stubProducts: stubProducts{"soda": {ID: "soda", Name: "Soda", PriceCents: 700, Available: true}},
		arrived:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	svc := New(NewMemoryStore(time.Hour), products, stubCoupons{}, &stubOrders{}, nil)
	ctx := context.Background()
	view, err := svc.Create(ctx, testEstablishment, CreateInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	errs := make(chan error, 2)
	for _, notes := range []string{"no ice", "extra ice"} {
		go func() {
			_, err := svc.Update(ctx, testEstablishment, view.Cart.ID, UpdateInput{Version: 1, Actions: []UpdateAction{
				{Action: "addLineItem", ProductID: "soda", Quantity: 1, Notes: notes},
			}}, false)
			errs <- err
		}()
	}
	<-products.arrived
	<-products.arrived
	close(products.release)

	var ok, conflicts int
	for range 2 {
		switch err := <-errs; {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got ok=%d conflicts=%d", ok, conflicts)
	}

	got, err := svc.Get(ctx, testEstablishment, view.Cart.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Cart.Version != 2 || len(got.Cart.Items) != 1 {
		t.Fatalf("unexpected cart %+v", got.Cart)
	}
}
