package httpserver

import (
	"net/http"

	"restaurant-ops/internal/auth"
	"restaurant-ops/internal/domain"
	cartsvc "restaurant-ops/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type cartActionRequest struct {
	Action     string           `json:"action"`
	ProductID  string           `json:"productId"`
	LineItemID string           `json:"lineItemId"`
	Quantity   int              `json:"quantity"`
	Modifiers  []string         `json:"modifiers"`
	Notes      string           `json:"notes"`
	Code       string           `json:"code"`
	OrderType  domain.OrderType `json:"orderType"`
	Name       string           `json:"name"`
	Amount     *amount          `json:"amount"`
}

type cartUpdateRequest struct {
	Version int                 `json:"version"`
	Actions []cartActionRequest `json:"actions"`
}

func (h *handlers) createCart(c *gin.Context) {
	var in cartsvc.CreateInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
	}
	view, err := h.deps.Carts.Create(c.Request.Context(), establishmentFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCart(*view))
}

func (h *handlers) getCart(c *gin.Context) {
	view, err := h.deps.Carts.Get(c.Request.Context(), establishmentFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(*view))
}

func (h *handlers) updateCart(c *gin.Context) {
	var req cartUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	in := cartsvc.UpdateInput{Version: req.Version, Actions: make([]cartsvc.UpdateAction, 0, len(req.Actions))}
	for _, a := range req.Actions {
		in.Actions = append(in.Actions, cartsvc.UpdateAction{
			Action:      a.Action,
			ProductID:   a.ProductID,
			LineItemID:  a.LineItemID,
			Quantity:    a.Quantity,
			Modifiers:   a.Modifiers,
			Notes:       a.Notes,
			Code:        a.Code,
			OrderType:   a.OrderType,
			Name:        a.Name,
			AmountCents: a.Amount.ptr(),
		})
	}
	_, staff := auth.FromContext(c)
	view, err := h.deps.Carts.Update(c.Request.Context(), establishmentFrom(c), c.Param("id"), in, staff)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(*view))
}

func (h *handlers) deleteCart(c *gin.Context) {
	if err := h.deps.Carts.Delete(c.Request.Context(), establishmentFrom(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) checkoutCart(c *gin.Context) {
	var in cartsvc.CheckoutInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
	}
	o, err := h.deps.Carts.Checkout(c.Request.Context(), establishmentFrom(c), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(*o))
}
