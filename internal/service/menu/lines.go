package menu

import (
	"fmt"
	"strings"

	"restaurant-ops/internal/domain"

	"github.com/google/uuid"
)

// ItemInput is a requested line: either a menu product with modifier keys,
// or, where allowed, a free-form custom line with its own name and price.
type ItemInput struct {
	ProductID      string   `json:"productId"`
	Quantity       int      `json:"quantity"`
	Modifiers      []string `json:"modifiers,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Name           string   `json:"name,omitempty"`
	UnitPriceCents int64    `json:"-"`
}

// IDs returns the distinct product ids referenced by items.
func IDs(items []ItemInput) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		id := strings.TrimSpace(it.ProductID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// BuildLineItem prices in against the authoritative product. Unavailable
// products and unknown modifiers are rejected.
func BuildLineItem(p domain.Product, in ItemInput) (domain.LineItem, error) {
	if in.Quantity <= 0 {
		return domain.LineItem{}, fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidInput)
	}
	if !p.Available {
		return domain.LineItem{}, fmt.Errorf("product %s is unavailable: %w", p.Name, domain.ErrInvalidInput)
	}
	var modifierTotal int64
	keys := make([]string, 0, len(in.Modifiers))
	for _, key := range in.Modifiers {
		m, ok := p.Modifier(key)
		if !ok {
			return domain.LineItem{}, fmt.Errorf("product %s has no modifier %q: %w", p.Name, key, domain.ErrInvalidInput)
		}
		modifierTotal += m.PriceCents
		keys = append(keys, m.Key)
	}
	return domain.LineItem{
		ID:                 uuid.NewString(),
		ProductID:          p.ID,
		Name:               p.Name,
		UnitPriceCents:     p.PriceCents,
		Quantity:           in.Quantity,
		ModifierTotalCents: modifierTotal,
		Modifiers:          keys,
		Notes:              strings.TrimSpace(in.Notes),
	}, nil
}

// BuildCustomLine turns a free-form line into a LineItem.
func BuildCustomLine(in ItemInput) (domain.LineItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.LineItem{}, fmt.Errorf("custom line needs a name: %w", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 || in.UnitPriceCents < 0 {
		return domain.LineItem{}, fmt.Errorf("custom line %s needs a positive quantity and price: %w", name, domain.ErrInvalidInput)
	}
	return domain.LineItem{
		ID:             uuid.NewString(),
		Name:           name,
		UnitPriceCents: in.UnitPriceCents,
		Quantity:       in.Quantity,
		Notes:          strings.TrimSpace(in.Notes),
	}, nil
}

// BuildLines resolves every input against products. Custom lines are only
// accepted when allowCustom is set.
func BuildLines(products map[string]domain.Product, items []ItemInput, allowCustom bool) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, 0, len(items))
	for _, in := range items {
		id := strings.TrimSpace(in.ProductID)
		if id == "" {
			if !allowCustom {
				return nil, fmt.Errorf("productId required: %w", domain.ErrInvalidInput)
			}
			line, err := BuildCustomLine(in)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
			continue
		}
		p, ok := products[id]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		line, err := BuildLineItem(p, in)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
