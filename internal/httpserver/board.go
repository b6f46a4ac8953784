package httpserver

import (
	"net/http"

	"restaurant-ops/internal/auth"
	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"

	"github.com/gin-gonic/gin"
)

type moveRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

type cancelRequest struct {
	Notes string `json:"notes"`
}

func (h *handlers) board(c *gin.Context) {
	cols, err := h.deps.Board.Columns(c.Request.Context(), establishmentFrom(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": toColumns(cols)})
}

func (h *handlers) moveCard(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if req.OrderID == "" {
		badRequest(c, "orderId required")
		return
	}
	target, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		badRequest(c, "unknown status "+req.Status)
		return
	}
	claims, _ := auth.FromContext(c)
	o, err := h.deps.Board.Move(c.Request.Context(), establishmentFrom(c).ID, lifecycle.MoveRequest{
		OrderID: req.OrderID,
		Status:  target,
		Notes:   req.Notes,
		ActorID: claims.StaffID(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*o))
}

func (h *handlers) cancelCard(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
	}
	claims, _ := auth.FromContext(c)
	o, err := h.deps.Board.Cancel(c.Request.Context(), establishmentFrom(c).ID, lifecycle.MoveRequest{
		OrderID: c.Param("id"),
		Notes:   req.Notes,
		ActorID: claims.StaffID(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*o))
}
