package domain

import "time"

// Cart is a storefront order draft. It is persisted as a whole document.
type Cart struct {
	ID                       string     `json:"id"`
	Version                  int        `json:"version"`
	EstablishmentID          string     `json:"establishmentId"`
	OrderType                OrderType  `json:"orderType"`
	Items                    []LineItem `json:"lineItems"`
	CouponCode               string     `json:"couponCode,omitempty"`
	DeliveryFeeOverrideCents *int64     `json:"deliveryFeeOverrideCents,omitempty"`
	CustomerName             string     `json:"customerName,omitempty"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}

// LineItem is one product entry inside a cart or order.
type LineItem struct {
	ID                 string   `json:"id"`
	ProductID          string   `json:"productId"`
	Name               string   `json:"name"`
	UnitPriceCents     int64    `json:"unitPriceCents"`
	Quantity           int      `json:"quantity"`
	ModifierTotalCents int64    `json:"modifierTotalCents"`
	Modifiers          []string `json:"modifiers,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}

// LineTotalCents is quantity * (unit price + modifiers).
func (l LineItem) LineTotalCents() int64 {
	return int64(l.Quantity) * (l.UnitPriceCents + l.ModifierTotalCents)
}
