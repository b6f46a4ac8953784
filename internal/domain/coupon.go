package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// DiscountRule is a coupon as fetched for one pricing calculation.
// Value is a percent for percentage rules and a currency amount for fixed ones.
type DiscountRule struct {
	ID                 string          `json:"id"`
	EstablishmentID    string          `json:"-"`
	Code               string          `json:"code"`
	Kind               DiscountKind    `json:"kind"`
	Value              decimal.Decimal `json:"value"`
	MinOrderValueCents *int64          `json:"minOrderValueCents,omitempty"`
	MaxDiscountCents   *int64          `json:"maxDiscountAmountCents,omitempty"`
	UsageLimit         *int            `json:"usageLimit,omitempty"`
	UsedCount          int             `json:"usedCount"`
	ValidFrom          *time.Time      `json:"validFrom,omitempty"`
	ValidTo            *time.Time      `json:"validTo,omitempty"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// FixedCents converts a fixed rule's value to cents, rounding half away from zero.
func (r DiscountRule) FixedCents() int64 {
	return r.Value.Shift(2).Round(0).IntPart()
}
