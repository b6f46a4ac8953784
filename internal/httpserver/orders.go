package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-ops/internal/auth"
	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"
	orderrepo "restaurant-ops/internal/repository/order"
	"restaurant-ops/internal/service/menu"
	ordersvc "restaurant-ops/internal/service/order"

	"github.com/gin-gonic/gin"
)

type itemRequest struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Modifiers []string `json:"modifiers"`
	Notes     string   `json:"notes"`
	Name      string   `json:"name"`
	UnitPrice *amount  `json:"unitPrice"`
}

type quoteRequest struct {
	Type        domain.OrderType `json:"type"`
	Items       []itemRequest    `json:"items"`
	CouponCode  string           `json:"couponCode"`
	DeliveryFee *amount          `json:"deliveryFee"`
}

// toInput converts the request. Custom lines and fee overrides are staff-only.
func (r quoteRequest) toInput(staff bool) (ordersvc.QuoteInput, string) {
	in := ordersvc.QuoteInput{
		Type:             r.Type,
		CouponCode:       r.CouponCode,
		DeliveryFeeCents: r.DeliveryFee.ptr(),
		AllowCustomItems: staff,
	}
	if in.DeliveryFeeCents != nil && !staff {
		return in, "deliveryFee override requires staff"
	}
	in.Items = make([]menu.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		item := menu.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Modifiers: it.Modifiers,
			Notes:     it.Notes,
			Name:      it.Name,
		}
		if p := it.UnitPrice.ptr(); p != nil {
			item.UnitPriceCents = *p
		}
		in.Items = append(in.Items, item)
	}
	return in, ""
}

type quoteResponse struct {
	LineItems       []lineItemResponse `json:"lineItems"`
	Totals          totalsResponse     `json:"totals"`
	CouponCode      string             `json:"couponCode,omitempty"`
	DiscountReason  string             `json:"discountReason"`
	DiscountMessage string             `json:"discountMessage"`
}

func (h *handlers) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	_, staff := auth.FromContext(c)
	in, msg := req.toInput(staff)
	if msg != "" {
		badRequest(c, msg)
		return
	}
	q, err := h.deps.Orders.Quote(c.Request.Context(), establishmentFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := quoteResponse{
		LineItems:       toLineItems(q.Items),
		Totals:          toTotals(q.Totals),
		DiscountReason:  string(q.Discount),
		DiscountMessage: q.Discount.Message(),
	}
	if q.Coupon != nil {
		resp.CouponCode = q.Coupon.Code
	}
	c.JSON(http.StatusOK, resp)
}

type createOrderRequest struct {
	quoteRequest
	Notes        string `json:"notes"`
	CustomerName string `json:"customerName"`
	TableLabel   string `json:"tableLabel"`
}

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	claims, _ := auth.FromContext(c)
	in, msg := req.quoteRequest.toInput(true)
	if msg != "" {
		badRequest(c, msg)
		return
	}
	o, err := h.deps.Orders.Create(c.Request.Context(), establishmentFrom(c), ordersvc.CreateInput{
		QuoteInput:   in,
		Notes:        req.Notes,
		CustomerName: req.CustomerName,
		TableLabel:   req.TableLabel,
		ActorID:      claims.StaffID(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(*o))
}

func (h *handlers) listOrders(c *gin.Context) {
	filter := orderrepo.ListFilter{}
	for _, raw := range c.QueryArray("status") {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			st, ok := domain.ParseOrderStatus(part)
			if !ok {
				badRequest(c, "unknown status "+part)
				return
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "since must be RFC3339")
			return
		}
		filter.Since = &since
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	orders, err := h.deps.Orders.List(c.Request.Context(), establishmentFrom(c).ID, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "results": toOrders(orders)})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.deps.Orders.Get(c.Request.Context(), establishmentFrom(c).ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*o))
}

func (h *handlers) orderEvents(c *gin.Context) {
	events, err := h.deps.Orders.Events(c.Request.Context(), establishmentFrom(c).ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": events})
}

type statusRequest struct {
	Status         domain.OrderStatus `json:"status"`
	Notes          string             `json:"notes"`
	ExpectedStatus domain.OrderStatus `json:"expectedStatus"`
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if strings.TrimSpace(string(req.Status)) == "" {
		badRequest(c, "status required")
		return
	}
	target, ok := domain.ParseOrderStatus(string(req.Status))
	if !ok {
		badRequest(c, "unknown status "+string(req.Status))
		return
	}
	var expected domain.OrderStatus
	if req.ExpectedStatus != "" {
		if expected, ok = domain.ParseOrderStatus(string(req.ExpectedStatus)); !ok {
			badRequest(c, "unknown expectedStatus "+string(req.ExpectedStatus))
			return
		}
	}
	claims, _ := auth.FromContext(c)
	o, err := h.deps.Board.Transition(c.Request.Context(), establishmentFrom(c).ID, lifecycle.MoveRequest{
		OrderID:  c.Param("id"),
		Status:   target,
		Expected: expected,
		Notes:    req.Notes,
		ActorID:  claims.StaffID(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*o))
}
