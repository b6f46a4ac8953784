package httpserver

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"
	"restaurant-ops/internal/pricing"
	cartsvc "restaurant-ops/internal/service/cart"
	menusvc "restaurant-ops/internal/service/menu"
)

// amount accepts a money value as a JSON string ("18.50") or number (18.5).
type amount struct {
	cents int64
	set   bool
}

func (a *amount) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		*a = amount{}
		return nil
	}
	cents, err := pricing.ParseAmount(strings.Trim(string(raw), `"`))
	if err != nil {
		return err
	}
	if cents < 0 {
		return fmt.Errorf("amount %s is negative", raw)
	}
	*a = amount{cents: cents, set: true}
	return nil
}

func (a *amount) ptr() *int64 {
	if a == nil || !a.set {
		return nil
	}
	v := a.cents
	return &v
}

func money(cents int64) string {
	return pricing.FormatCents(cents)
}

func moneyPtr(cents *int64) *string {
	if cents == nil {
		return nil
	}
	v := money(*cents)
	return &v
}

type totalsResponse struct {
	Subtotal    string `json:"subtotal"`
	Discount    string `json:"discount"`
	DeliveryFee string `json:"deliveryFee"`
	ServiceFee  string `json:"serviceFee"`
	Total       string `json:"total"`
}

func toTotals(t pricing.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:    money(t.SubtotalCents),
		Discount:    money(t.DiscountCents),
		DeliveryFee: money(t.DeliveryFeeCents),
		ServiceFee:  money(t.ServiceFeeCents),
		Total:       money(t.TotalCents),
	}
}

type lineItemResponse struct {
	ID            string   `json:"id"`
	ProductID     string   `json:"productId,omitempty"`
	Name          string   `json:"name"`
	UnitPrice     string   `json:"unitPrice"`
	ModifierTotal string   `json:"modifierTotal"`
	Quantity      int      `json:"quantity"`
	LineTotal     string   `json:"lineTotal"`
	Modifiers     []string `json:"modifiers"`
	Notes         string   `json:"notes,omitempty"`
}

func toLineItems(items []domain.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, 0, len(items))
	for _, it := range items {
		modifiers := it.Modifiers
		if modifiers == nil {
			modifiers = []string{}
		}
		out = append(out, lineItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Name:          it.Name,
			UnitPrice:     money(it.UnitPriceCents),
			ModifierTotal: money(it.ModifierTotalCents),
			Quantity:      it.Quantity,
			LineTotal:     money(it.LineTotalCents()),
			Modifiers:     modifiers,
			Notes:         it.Notes,
		})
	}
	return out
}

type orderResponse struct {
	ID                  string               `json:"id"`
	OrderNumber         int64                `json:"orderNumber"`
	Status              domain.OrderStatus   `json:"status"`
	Type                domain.OrderType     `json:"type"`
	LineItems           []lineItemResponse   `json:"lineItems"`
	CouponCode          string               `json:"couponCode,omitempty"`
	Subtotal            string               `json:"subtotal"`
	Discount            string               `json:"discount"`
	DeliveryFee         string               `json:"deliveryFee"`
	ServiceFee          string               `json:"serviceFee"`
	Total               string               `json:"total"`
	Notes               string               `json:"notes,omitempty"`
	CustomerName        string               `json:"customerName,omitempty"`
	TableLabel          string               `json:"tableLabel,omitempty"`
	AllowedNextStatuses []domain.OrderStatus `json:"allowedNextStatuses"`
	CanCancel           bool                 `json:"canCancel"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

func toOrder(o domain.Order) orderResponse {
	return orderResponse{
		ID:                  o.ID,
		OrderNumber:         o.Number,
		Status:              o.Status,
		Type:                o.Type,
		LineItems:           toLineItems(o.Items),
		CouponCode:          o.CouponCode,
		Subtotal:            money(o.SubtotalCents),
		Discount:            money(o.DiscountCents),
		DeliveryFee:         money(o.DeliveryFeeCents),
		ServiceFee:          money(o.ServiceFeeCents),
		Total:               money(o.TotalCents),
		Notes:               o.Notes,
		CustomerName:        o.CustomerName,
		TableLabel:          o.TableLabel,
		AllowedNextStatuses: lifecycle.AllowedNextStatuses(o.Status, o.Type),
		CanCancel:           lifecycle.CanCancel(o.Status),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func toOrders(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	return out
}

type columnResponse struct {
	Status domain.OrderStatus `json:"status"`
	Orders []orderResponse    `json:"orders"`
}

func toColumns(cols []lifecycle.Column) []columnResponse {
	out := make([]columnResponse, 0, len(cols))
	for _, col := range cols {
		out = append(out, columnResponse{Status: col.Status, Orders: toOrders(col.Orders)})
	}
	return out
}

type couponResponse struct {
	ID                string              `json:"id"`
	Code              string              `json:"code"`
	Kind              domain.DiscountKind `json:"kind"`
	Value             string              `json:"value"`
	MinOrderValue     *string             `json:"minOrderValue,omitempty"`
	MaxDiscountAmount *string             `json:"maxDiscountAmount,omitempty"`
	UsageLimit        *int                `json:"usageLimit,omitempty"`
	UsedCount         int                 `json:"usedCount"`
	ValidFrom         *time.Time          `json:"validFrom,omitempty"`
	ValidTo           *time.Time          `json:"validTo,omitempty"`
	IsActive          bool                `json:"isActive"`
	CreatedAt         time.Time           `json:"createdAt"`
}

func toCoupon(r domain.DiscountRule) couponResponse {
	return couponResponse{
		ID:                r.ID,
		Code:              r.Code,
		Kind:              r.Kind,
		Value:             r.Value.StringFixed(2),
		MinOrderValue:     moneyPtr(r.MinOrderValueCents),
		MaxDiscountAmount: moneyPtr(r.MaxDiscountCents),
		UsageLimit:        r.UsageLimit,
		UsedCount:         r.UsedCount,
		ValidFrom:         r.ValidFrom,
		ValidTo:           r.ValidTo,
		IsActive:          r.IsActive,
		CreatedAt:         r.CreatedAt,
	}
}

type modifierResponse struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type productResponse struct {
	ID          string             `json:"id"`
	CategoryID  *string            `json:"categoryId,omitempty"`
	Key         string             `json:"key"`
	SKU         string             `json:"sku"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Price       string             `json:"price"`
	Currency    string             `json:"currency"`
	Modifiers   []modifierResponse `json:"modifiers"`
	Available   bool               `json:"available"`
}

func toProduct(p domain.Product) productResponse {
	modifiers := make([]modifierResponse, 0, len(p.Modifiers))
	for _, m := range p.Modifiers {
		modifiers = append(modifiers, modifierResponse{Key: m.Key, Name: m.Name, Price: money(m.PriceCents)})
	}
	return productResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Key:         p.Key,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.PriceCents),
		Currency:    p.Currency,
		Modifiers:   modifiers,
		Available:   p.Available,
	}
}

func toProducts(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	return out
}

type menuSectionResponse struct {
	Category domain.Category   `json:"category"`
	Products []productResponse `json:"products"`
}

type menuResponse struct {
	Sections      []menuSectionResponse `json:"sections"`
	Uncategorized []productResponse     `json:"uncategorized"`
}

func toMenu(m menusvc.Menu) menuResponse {
	sections := make([]menuSectionResponse, 0, len(m.Sections))
	for _, s := range m.Sections {
		sections = append(sections, menuSectionResponse{Category: s.Category, Products: toProducts(s.Products)})
	}
	return menuResponse{Sections: sections, Uncategorized: toProducts(m.Uncategorized)}
}

type cartResponse struct {
	ID                  string              `json:"id"`
	Version             int                 `json:"version"`
	OrderType           domain.OrderType    `json:"orderType"`
	LineItems           []lineItemResponse  `json:"lineItems"`
	CouponCode          string              `json:"couponCode,omitempty"`
	DeliveryFeeOverride *string             `json:"deliveryFeeOverride,omitempty"`
	CustomerName        string              `json:"customerName,omitempty"`
	Totals              totalsResponse      `json:"totals"`
	DiscountReason      pricing.Eligibility `json:"discountReason"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

func toCart(v cartsvc.View) cartResponse {
	return cartResponse{
		ID:                  v.Cart.ID,
		Version:             v.Cart.Version,
		OrderType:           v.Cart.OrderType,
		LineItems:           toLineItems(v.Cart.Items),
		CouponCode:          v.Cart.CouponCode,
		DeliveryFeeOverride: moneyPtr(v.Cart.DeliveryFeeOverrideCents),
		CustomerName:        v.Cart.CustomerName,
		Totals:              toTotals(v.Totals),
		DiscountReason:      v.DiscountReason,
		CreatedAt:           v.Cart.CreatedAt,
		UpdatedAt:           v.Cart.UpdatedAt,
	}
}
