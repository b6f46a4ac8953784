// Package pricing computes cart and order totals. Everything here is pure
// arithmetic over int64 cents; callers validate their input first.
package pricing

import (
	"time"

	"restaurant-ops/internal/domain"

	"github.com/shopspring/decimal"
)

// Context is everything a totals calculation depends on.
type Context struct {
	Items                    []domain.LineItem
	OrderType                domain.OrderType
	Discount                 *domain.DiscountRule
	DeliveryFeeOverrideCents *int64
	DefaultDeliveryFeeCents  int64
	ServiceFeeCents          int64
	// At is the instant the discount window is evaluated against.
	At time.Time
}

type Totals struct {
	SubtotalCents    int64 `json:"subtotalCents"`
	DiscountCents    int64 `json:"discountCents"`
	DeliveryFeeCents int64 `json:"deliveryFeeCents"`
	ServiceFeeCents  int64 `json:"serviceFeeCents"`
	TotalCents       int64 `json:"totalCents"`
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals prices a context. It never fails: an unusable discount rule
// yields a zero discount and the total never drops below zero.
func ComputeTotals(c Context) Totals {
	subtotal := Subtotal(c.Items)
	t := Totals{
		SubtotalCents:    subtotal,
		DiscountCents:    DiscountCents(c.Discount, subtotal, c.At),
		DeliveryFeeCents: deliveryFee(c),
		ServiceFeeCents:  c.ServiceFeeCents,
	}
	t.TotalCents = t.SubtotalCents - t.DiscountCents + t.DeliveryFeeCents + t.ServiceFeeCents
	if t.TotalCents < 0 {
		t.TotalCents = 0
	}
	return t
}

// Subtotal sums the line totals; an empty slice is zero.
func Subtotal(items []domain.LineItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.LineTotalCents()
	}
	return sum
}

// DiscountCents is the discount a rule grants on subtotal at the given time,
// clamped to the rule's cap and to the subtotal itself.
func DiscountCents(rule *domain.DiscountRule, subtotal int64, at time.Time) int64 {
	if CheckDiscount(rule, subtotal, at) != Applied {
		return 0
	}

	var discount int64
	switch rule.Kind {
	case domain.DiscountPercentage:
		discount = decimal.NewFromInt(subtotal).Mul(rule.Value).Div(hundred).Round(0).IntPart()
	default:
		discount = rule.FixedCents()
	}

	if rule.MaxDiscountCents != nil && discount > *rule.MaxDiscountCents {
		discount = *rule.MaxDiscountCents
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func deliveryFee(c Context) int64 {
	if c.OrderType != domain.OrderTypeDelivery {
		return 0
	}
	if c.DeliveryFeeOverrideCents != nil {
		return *c.DeliveryFeeOverrideCents
	}
	return c.DefaultDeliveryFeeCents
}
