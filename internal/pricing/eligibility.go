package pricing

import (
	"time"

	"restaurant-ops/internal/domain"
)

// Eligibility explains whether a discount rule applies to a subtotal.
type Eligibility string

const (
	Applied        Eligibility = "applied"
	NoRule         Eligibility = "no_rule"
	Inactive       Eligibility = "inactive"
	NotStarted     Eligibility = "not_started"
	Expired        Eligibility = "expired"
	UsageExhausted Eligibility = "usage_exhausted"
	BelowMinimum   Eligibility = "below_minimum"
)

// Message is a customer-facing explanation.
func (e Eligibility) Message() string {
	switch e {
	case Applied:
		return "coupon applied"
	case NoRule:
		return "coupon not found"
	case Inactive:
		return "coupon is not active"
	case NotStarted:
		return "coupon is not valid yet"
	case Expired:
		return "coupon has expired"
	case UsageExhausted:
		return "coupon usage limit reached"
	case BelowMinimum:
		return "order total is below the coupon minimum"
	}
	return string(e)
}

// CheckDiscount evaluates the rule's guards in a fixed order. A rule with an
// active window evaluated at the zero time is treated as outside the window.
func CheckDiscount(rule *domain.DiscountRule, subtotal int64, at time.Time) Eligibility {
	if rule == nil {
		return NoRule
	}
	if !rule.IsActive {
		return Inactive
	}
	if rule.ValidFrom != nil && (at.IsZero() || at.Before(*rule.ValidFrom)) {
		return NotStarted
	}
	if rule.ValidTo != nil && (at.IsZero() || at.After(*rule.ValidTo)) {
		return Expired
	}
	if rule.UsageLimit != nil && rule.UsedCount >= *rule.UsageLimit {
		return UsageExhausted
	}
	if rule.MinOrderValueCents != nil && subtotal < *rule.MinOrderValueCents {
		return BelowMinimum
	}
	return Applied
}
