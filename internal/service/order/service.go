package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"
	"restaurant-ops/internal/pricing"
	orderrepo "restaurant-ops/internal/repository/order"
	"restaurant-ops/internal/service/menu"
)

type productLookup interface {
	ProductsByID(ctx context.Context, establishmentID string, ids []string) (map[string]domain.Product, error)
}

type couponLookup interface {
	Lookup(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error)
}

// Notifier is told about every order the service creates or moves.
type Notifier interface {
	Track(order domain.Order)
}

type Service struct {
	repo     orderrepo.Repository
	products productLookup
	coupons  couponLookup
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

func New(repo orderrepo.Repository, products productLookup, coupons couponLookup, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, coupons: coupons, logger: logger, now: time.Now}
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// QuoteInput is an ad-hoc priceable order. DeliveryFeeCents overrides the
// establishment's default for delivery orders.
type QuoteInput struct {
	Type             domain.OrderType
	Items            []menu.ItemInput
	CouponCode       string
	DeliveryFeeCents *int64
	AllowCustomItems bool
}

type Quote struct {
	Items    []domain.LineItem    `json:"lineItems"`
	Totals   pricing.Totals       `json:"totals"`
	Coupon   *domain.DiscountRule `json:"coupon,omitempty"`
	Discount pricing.Eligibility  `json:"discountReason"`
}

// Quote prices items against current product prices and the coupon as it
// stands now. Nothing is persisted.
func (s *Service) Quote(ctx context.Context, est domain.Establishment, in QuoteInput) (*Quote, error) {
	typ, ok := domain.ParseOrderType(string(in.Type))
	if !ok {
		return nil, fmt.Errorf("unknown order type %q: %w", in.Type, domain.ErrInvalidInput)
	}
	if in.DeliveryFeeCents != nil && *in.DeliveryFeeCents < 0 {
		return nil, fmt.Errorf("delivery fee must not be negative: %w", domain.ErrInvalidInput)
	}

	products, err := s.products.ProductsByID(ctx, est.ID, menu.IDs(in.Items))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	lines, err := menu.BuildLines(products, in.Items, in.AllowCustomItems)
	if err != nil {
		return nil, err
	}
	rule, err := s.coupons.Lookup(ctx, est.ID, in.CouponCode)
	if err != nil {
		return nil, err
	}
	return s.price(est, typ, lines, rule, in.DeliveryFeeCents), nil
}

// Price computes totals for already built lines, e.g. a stored cart.
func (s *Service) Price(ctx context.Context, est domain.Establishment, typ domain.OrderType, lines []domain.LineItem, couponCode string, deliveryFee *int64) (*Quote, error) {
	rule, err := s.coupons.Lookup(ctx, est.ID, couponCode)
	if err != nil {
		return nil, err
	}
	return s.price(est, typ, lines, rule, deliveryFee), nil
}

func (s *Service) price(est domain.Establishment, typ domain.OrderType, lines []domain.LineItem, rule *domain.DiscountRule, deliveryFee *int64) *Quote {
	at := s.now()
	totals := pricing.ComputeTotals(pricing.Context{
		Items:                    lines,
		OrderType:                typ,
		Discount:                 rule,
		DeliveryFeeOverrideCents: deliveryFee,
		DefaultDeliveryFeeCents:  est.DefaultDeliveryFeeCents,
		ServiceFeeCents:          est.ServiceFeeCents,
		At:                       at,
	})
	return &Quote{
		Items:    lines,
		Totals:   totals,
		Coupon:   rule,
		Discount: pricing.CheckDiscount(rule, totals.SubtotalCents, at),
	}
}

type CreateInput struct {
	QuoteInput
	Notes        string
	CustomerName string
	TableLabel   string
	ActorID      string
}

// Create re-prices the order server-side and persists it as pending. A
// coupon that no longer applies is dropped rather than failing the order.
func (s *Service) Create(ctx context.Context, est domain.Establishment, in CreateInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("at least one item required: %w", domain.ErrInvalidInput)
	}
	quote, err := s.Quote(ctx, est, in.QuoteInput)
	if err != nil {
		return nil, err
	}
	typ, _ := domain.ParseOrderType(string(in.Type))
	return s.persist(ctx, est, typ, quote, in)
}

func (s *Service) persist(ctx context.Context, est domain.Establishment, typ domain.OrderType, quote *Quote, in CreateInput) (*domain.Order, error) {
	applied := quote.Coupon != nil && quote.Discount == pricing.Applied
	o := domain.Order{
		EstablishmentID:  est.ID,
		Status:           domain.StatusPending,
		Type:             typ,
		Items:            quote.Items,
		SubtotalCents:    quote.Totals.SubtotalCents,
		DiscountCents:    quote.Totals.DiscountCents,
		DeliveryFeeCents: quote.Totals.DeliveryFeeCents,
		ServiceFeeCents:  quote.Totals.ServiceFeeCents,
		TotalCents:       quote.Totals.TotalCents,
		Notes:            strings.TrimSpace(in.Notes),
		CustomerName:     strings.TrimSpace(in.CustomerName),
		TableLabel:       strings.TrimSpace(in.TableLabel),
	}
	if applied {
		o.CouponCode = quote.Coupon.Code
	}

	created, err := s.repo.Create(ctx, orderrepo.CreateInput{Order: o, RedeemCoupon: applied, ActorID: in.ActorID})
	if err != nil {
		if errors.Is(err, orderrepo.ErrCouponExhausted) {
			return nil, fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.logger.Printf("order: created establishment_id=%s id=%s number=%d type=%s total_cents=%d coupon=%s",
		created.EstablishmentID, created.ID, created.Number, created.Type, created.TotalCents, created.CouponCode)
	s.notify(*created)
	return created, nil
}

func (s *Service) Get(ctx context.Context, establishmentID, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, establishmentID, id)
}

func (s *Service) List(ctx context.Context, establishmentID string, filter orderrepo.ListFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, establishmentID, filter)
}

func (s *Service) Events(ctx context.Context, establishmentID, orderID string) ([]domain.StatusEvent, error) {
	return s.repo.Events(ctx, establishmentID, orderID)
}

// UpdateStatus validates and persists a status change. When upd.Expected is
// set the change only applies if the order is still in that status.
func (s *Service) UpdateStatus(ctx context.Context, upd lifecycle.StatusUpdate) (*domain.Order, error) {
	target, ok := domain.ParseOrderStatus(string(upd.Status))
	if !ok {
		return nil, fmt.Errorf("unknown status %q: %w", upd.Status, domain.ErrInvalidInput)
	}
	current, err := s.repo.GetByID(ctx, upd.EstablishmentID, upd.OrderID)
	if err != nil {
		return nil, err
	}
	if upd.Expected != "" && current.Status != upd.Expected {
		return nil, fmt.Errorf("order %s is %s, not %s: %w", current.ID, current.Status, upd.Expected, domain.ErrConflict)
	}
	if !lifecycle.CanTransition(current.Status, target, current.Type) {
		return nil, &lifecycle.TransitionError{
			OrderID:   current.ID,
			From:      current.Status,
			Attempted: target,
			Reason:    lifecycle.ReasonIllegal,
			Err:       lifecycle.ErrIllegalTransition,
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, orderrepo.StatusChange{
		EstablishmentID: upd.EstablishmentID,
		OrderID:         current.ID,
		From:            current.Status,
		To:              target,
		Notes:           strings.TrimSpace(upd.Notes),
		ActorID:         upd.ActorID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order: status establishment_id=%s id=%s from=%s to=%s actor=%s", upd.EstablishmentID, updated.ID, current.Status, updated.Status, upd.ActorID)
	s.notify(*updated)
	return updated, nil
}

func (s *Service) notify(o domain.Order) {
	if s.notifier != nil {
		s.notifier.Track(o)
	}
}
