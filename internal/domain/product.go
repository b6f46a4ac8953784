package domain

import "time"

// Modifier is an optional add-on priced on top of the product.
type Modifier struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

type Product struct {
	ID              string     `json:"id"`
	EstablishmentID string     `json:"-"`
	CategoryID      *string    `json:"categoryId,omitempty"`
	Key             string     `json:"key"`
	SKU             string     `json:"sku"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	PriceCents      int64      `json:"priceCents"`
	Currency        string     `json:"currency"`
	Modifiers       []Modifier `json:"modifiers,omitempty"`
	Available       bool       `json:"available"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Modifier returns the modifier with the given key.
func (p Product) Modifier(key string) (Modifier, bool) {
	for _, m := range p.Modifiers {
		if m.Key == key {
			return m, true
		}
	}
	return Modifier{}, false
}
