package httpserver

import (
	"net/http"
	"strings"
	"time"

	"restaurant-ops/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type validateCouponRequest struct {
	Code            string  `json:"code"`
	OrderTotal      *amount `json:"orderTotal"`
	EstablishmentID string  `json:"establishmentId"`
}

type validateCouponResponse struct {
	Valid    bool            `json:"valid"`
	Coupon   *couponResponse `json:"coupon,omitempty"`
	Discount *string         `json:"discount,omitempty"`
	Reason   string          `json:"reason"`
	Message  string          `json:"message"`
}

func (h *handlers) validateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if strings.TrimSpace(req.Code) == "" || req.OrderTotal.ptr() == nil {
		badRequest(c, "code and orderTotal are required")
		return
	}
	est := establishmentFrom(c)
	if req.EstablishmentID != "" && req.EstablishmentID != est.ID {
		badRequest(c, "establishmentId does not match the establishment in the path")
		return
	}

	v, err := h.deps.Coupons.Validate(c.Request.Context(), est.ID, req.Code, *req.OrderTotal.ptr())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := validateCouponResponse{Valid: v.Valid, Reason: string(v.Reason), Message: v.Message}
	if v.Valid {
		coupon := toCoupon(*v.Coupon)
		resp.Coupon = &coupon
		discount := money(v.DiscountCents)
		resp.Discount = &discount
	}
	c.JSON(http.StatusOK, resp)
}

type createCouponRequest struct {
	Code              string              `json:"code"`
	Kind              domain.DiscountKind `json:"kind"`
	Value             decimal.Decimal     `json:"value"`
	MinOrderValue     *amount             `json:"minOrderValue"`
	MaxDiscountAmount *amount             `json:"maxDiscountAmount"`
	UsageLimit        *int                `json:"usageLimit"`
	ValidFrom         *time.Time          `json:"validFrom"`
	ValidTo           *time.Time          `json:"validTo"`
}

func (h *handlers) createCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	rule, err := h.deps.Coupons.Create(c.Request.Context(), domain.DiscountRule{
		EstablishmentID:    establishmentFrom(c).ID,
		Code:               req.Code,
		Kind:               req.Kind,
		Value:              req.Value,
		MinOrderValueCents: req.MinOrderValue.ptr(),
		MaxDiscountCents:   req.MaxDiscountAmount.ptr(),
		UsageLimit:         req.UsageLimit,
		ValidFrom:          req.ValidFrom,
		ValidTo:            req.ValidTo,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCoupon(*rule))
}

func (h *handlers) listCoupons(c *gin.Context) {
	rules, err := h.deps.Coupons.List(c.Request.Context(), establishmentFrom(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]couponResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, toCoupon(r))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "results": out})
}

func (h *handlers) getCoupon(c *gin.Context) {
	rule, err := h.deps.Coupons.Get(c.Request.Context(), establishmentFrom(c).ID, c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCoupon(*rule))
}

func (h *handlers) deactivateCoupon(c *gin.Context) {
	rule, err := h.deps.Coupons.Deactivate(c.Request.Context(), establishmentFrom(c).ID, c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCoupon(*rule))
}
