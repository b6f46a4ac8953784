package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"
	"time"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/pricing"
	"restaurant-ops/internal/service/menu"
	ordersvc "restaurant-ops/internal/service/order"

	"github.com/google/uuid"
)

// Store persists whole carts. Save writes only while the stored cart is at
// expectedVersion, where 0 means the cart must not exist yet, and returns
// domain.ErrConflict otherwise.
type Store interface {
	Get(ctx context.Context, establishmentID, id string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart, expectedVersion int) error
	Delete(ctx context.Context, establishmentID, id string) error
}

type productLookup interface {
	Product(ctx context.Context, establishmentID, id string) (*domain.Product, error)
}

type couponLookup interface {
	Lookup(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error)
}

type orderService interface {
	Price(ctx context.Context, est domain.Establishment, typ domain.OrderType, lines []domain.LineItem, couponCode string, deliveryFee *int64) (*ordersvc.Quote, error)
	Create(ctx context.Context, est domain.Establishment, in ordersvc.CreateInput) (*domain.Order, error)
}

type Service struct {
	store    Store
	products productLookup
	coupons  couponLookup
	orders   orderService
	logger   *log.Logger
	now      func() time.Time
}

func New(store Store, products productLookup, coupons couponLookup, orders orderService, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{store: store, products: products, coupons: coupons, orders: orders, logger: logger, now: time.Now}
}

type CreateInput struct {
	OrderType    domain.OrderType `json:"orderType"`
	CustomerName string           `json:"customerName,omitempty"`
}

type UpdateInput struct {
	Version int            `json:"version"`
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action      string           `json:"action"`
	ProductID   string           `json:"productId,omitempty"`
	LineItemID  string           `json:"lineItemId,omitempty"`
	Quantity    int              `json:"quantity,omitempty"`
	Modifiers   []string         `json:"modifiers,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Code        string           `json:"code,omitempty"`
	OrderType   domain.OrderType `json:"orderType,omitempty"`
	Name        string           `json:"name,omitempty"`
	AmountCents *int64           `json:"-"`
}

// View is a cart with its live totals.
type View struct {
	Cart           *domain.Cart        `json:"cart"`
	Totals         pricing.Totals      `json:"totals"`
	DiscountReason pricing.Eligibility `json:"discountReason"`
}

func (s *Service) Create(ctx context.Context, est domain.Establishment, in CreateInput) (*View, error) {
	typ := in.OrderType
	if typ == "" {
		typ = domain.OrderTypeTakeout
	}
	typ, ok := domain.ParseOrderType(string(typ))
	if !ok {
		return nil, fmt.Errorf("unknown order type %q: %w", in.OrderType, domain.ErrInvalidInput)
	}
	now := s.now().UTC()
	cart := &domain.Cart{
		ID:              uuid.NewString(),
		Version:         1,
		EstablishmentID: est.ID,
		OrderType:       typ,
		Items:           []domain.LineItem{},
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Save(ctx, cart, 0); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.view(ctx, est, cart)
}

func (s *Service) Get(ctx context.Context, est domain.Establishment, id string) (*View, error) {
	cart, err := s.store.Get(ctx, est.ID, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, est, cart)
}

// Update applies the actions in order. Any failing action discards the whole
// update. A non-zero Version must match the stored cart.
func (s *Service) Update(ctx context.Context, est domain.Establishment, id string, in UpdateInput, staff bool) (*View, error) {
	if len(in.Actions) == 0 {
		return nil, fmt.Errorf("actions required: %w", domain.ErrInvalidInput)
	}
	cart, err := s.store.Get(ctx, est.ID, id)
	if err != nil {
		return nil, err
	}
	if in.Version != 0 && in.Version != cart.Version {
		return nil, fmt.Errorf("cart %s is at version %d, not %d: %w", cart.ID, cart.Version, in.Version, domain.ErrConflict)
	}

	for _, action := range in.Actions {
		if err := s.apply(ctx, est, cart, action, staff); err != nil {
			return nil, err
		}
	}

	read := cart.Version
	cart.Version++
	cart.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, cart, read); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return s.view(ctx, est, cart)
}

func (s *Service) apply(ctx context.Context, est domain.Establishment, cart *domain.Cart, action UpdateAction, staff bool) error {
	switch strings.ToLower(strings.TrimSpace(action.Action)) {
	case "addlineitem":
		productID := strings.TrimSpace(action.ProductID)
		if productID == "" {
			return fmt.Errorf("productId required: %w", domain.ErrInvalidInput)
		}
		product, err := s.products.Product(ctx, est.ID, productID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("product %s not found: %w", productID, domain.ErrInvalidInput)
			}
			return err
		}
		line, err := menu.BuildLineItem(*product, menu.ItemInput{
			ProductID: productID,
			Quantity:  action.Quantity,
			Modifiers: action.Modifiers,
			Notes:     action.Notes,
		})
		if err != nil {
			return err
		}
		if i := sameLine(cart.Items, line); i >= 0 {
			cart.Items[i].Quantity += line.Quantity
			return nil
		}
		cart.Items = append(cart.Items, line)
	case "changelineitemquantity":
		i, err := lineIndex(cart.Items, action.LineItemID)
		if err != nil {
			return err
		}
		if action.Quantity <= 0 {
			cart.Items = slices.Delete(cart.Items, i, i+1)
			return nil
		}
		cart.Items[i].Quantity = action.Quantity
	case "removelineitem":
		i, err := lineIndex(cart.Items, action.LineItemID)
		if err != nil {
			return err
		}
		cart.Items = slices.Delete(cart.Items, i, i+1)
	case "applycoupon":
		rule, err := s.coupons.Lookup(ctx, est.ID, action.Code)
		if err != nil {
			return err
		}
		if rule == nil {
			return fmt.Errorf("coupon %q not found: %w", action.Code, domain.ErrInvalidInput)
		}
		cart.CouponCode = rule.Code
	case "removecoupon":
		cart.CouponCode = ""
	case "setordertype":
		typ, ok := domain.ParseOrderType(string(action.OrderType))
		if !ok {
			return fmt.Errorf("unknown order type %q: %w", action.OrderType, domain.ErrInvalidInput)
		}
		cart.OrderType = typ
	case "setdeliveryfee":
		if !staff {
			return fmt.Errorf("delivery fee override requires staff: %w", domain.ErrInvalidInput)
		}
		if action.AmountCents != nil && *action.AmountCents < 0 {
			return fmt.Errorf("delivery fee must not be negative: %w", domain.ErrInvalidInput)
		}
		cart.DeliveryFeeOverrideCents = action.AmountCents
	case "setcustomername":
		cart.CustomerName = strings.TrimSpace(action.Name)
	default:
		return fmt.Errorf("unsupported action %q: %w", action.Action, domain.ErrInvalidInput)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, est domain.Establishment, id string) error {
	return s.store.Delete(ctx, est.ID, id)
}

type CheckoutInput struct {
	Notes        string `json:"notes,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	TableLabel   string `json:"tableLabel,omitempty"`
}

// Checkout turns the cart into a pending order priced from current product
// prices and removes the cart.
func (s *Service) Checkout(ctx context.Context, est domain.Establishment, id string, in CheckoutInput) (*domain.Order, error) {
	cart, err := s.store.Get(ctx, est.ID, id)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("cart %s is empty: %w", cart.ID, domain.ErrInvalidInput)
	}

	items := make([]menu.ItemInput, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, menu.ItemInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Modifiers: line.Modifiers,
			Notes:     line.Notes,
		})
	}
	customer := strings.TrimSpace(in.CustomerName)
	if customer == "" {
		customer = cart.CustomerName
	}
	order, err := s.orders.Create(ctx, est, ordersvc.CreateInput{
		QuoteInput: ordersvc.QuoteInput{
			Type:             cart.OrderType,
			Items:            items,
			CouponCode:       cart.CouponCode,
			DeliveryFeeCents: cart.DeliveryFeeOverrideCents,
		},
		Notes:        in.Notes,
		CustomerName: customer,
		TableLabel:   in.TableLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout cart %s: %w", cart.ID, err)
	}

	if err := s.store.Delete(ctx, est.ID, cart.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Printf("cart: delete after checkout cart_id=%s order_id=%s error=%v", cart.ID, order.ID, err)
	}
	s.logger.Printf("cart: checked out cart_id=%s order_id=%s number=%d", cart.ID, order.ID, order.Number)
	return order, nil
}

func (s *Service) view(ctx context.Context, est domain.Establishment, cart *domain.Cart) (*View, error) {
	quote, err := s.orders.Price(ctx, est, cart.OrderType, cart.Items, cart.CouponCode, cart.DeliveryFeeOverrideCents)
	if err != nil {
		return nil, err
	}
	return &View{Cart: cart, Totals: quote.Totals, DiscountReason: quote.Discount}, nil
}

func lineIndex(items []domain.LineItem, id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, fmt.Errorf("lineItemId required: %w", domain.ErrInvalidInput)
	}
	for i, item := range items {
		if item.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("line item %s: %w", id, domain.ErrNotFound)
}

func sameLine(items []domain.LineItem, line domain.LineItem) int {
	for i, item := range items {
		if item.ProductID == line.ProductID && item.Notes == line.Notes && slices.Equal(item.Modifiers, line.Modifiers) {
			return i
		}
	}
	return -1
}
