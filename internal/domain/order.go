package domain

import (
	"strings"
	"time"
)

// OrderType decides which fees apply and which lifecycle branch is open.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeCustom   OrderType = "custom"
)

// ParseOrderType accepts the wire names case-insensitively.
func ParseOrderType(v string) (OrderType, bool) {
	t := OrderType(strings.ToLower(strings.TrimSpace(v)))
	switch t {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery, OrderTypeCustom:
		return t, true
	}
	return "", false
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in board column order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivering,
	StatusCompleted,
	StatusCancelled,
}

func ParseOrderStatus(v string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range OrderStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Order is the server-owned order aggregate.
type Order struct {
	ID               string      `json:"id"`
	EstablishmentID  string      `json:"establishmentId"`
	Number           int64       `json:"orderNumber"`
	Status           OrderStatus `json:"status"`
	Type             OrderType   `json:"type"`
	Items            []LineItem  `json:"items"`
	CouponCode       string      `json:"couponCode,omitempty"`
	SubtotalCents    int64       `json:"subtotalCents"`
	DiscountCents    int64       `json:"discountCents"`
	DeliveryFeeCents int64       `json:"deliveryFeeCents"`
	ServiceFeeCents  int64       `json:"serviceFeeCents"`
	TotalCents       int64       `json:"totalCents"`
	Notes            string      `json:"notes,omitempty"`
	CustomerName     string      `json:"customerName,omitempty"`
	TableLabel       string      `json:"tableLabel,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// StatusEvent records a confirmed status change.
type StatusEvent struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from,omitempty"`
	To        OrderStatus `json:"to"`
	Notes     string      `json:"notes,omitempty"`
	ActorID   string      `json:"actorId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
