package httpserver

import (
	"errors"
	"net/http"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"
	staffsvc "restaurant-ops/internal/service/staff"

	"github.com/gin-gonic/gin"
)

type transitionErrorResponse struct {
	Error           string             `json:"error"`
	OrderID         string             `json:"orderId"`
	AttemptedStatus domain.OrderStatus `json:"attemptedStatus"`
	CurrentStatus   domain.OrderStatus `json:"currentStatus,omitempty"`
	Reason          lifecycle.Reason   `json:"reason"`
}

var transitionStatus = map[lifecycle.Reason]int{
	lifecycle.ReasonIllegal:         http.StatusUnprocessableEntity,
	lifecycle.ReasonInFlight:        http.StatusConflict,
	lifecycle.ReasonTimeout:         http.StatusGatewayTimeout,
	lifecycle.ReasonRejected:        http.StatusBadGateway,
	lifecycle.ReasonUnknownOrder:    http.StatusNotFound,
	lifecycle.ReasonLockUnavailable: http.StatusServiceUnavailable,
	lifecycle.ReasonStale:           http.StatusConflict,
}

// writeError maps service errors to HTTP responses.
func (h *handlers) writeError(c *gin.Context, err error) {
	var terr *lifecycle.TransitionError
	if errors.As(err, &terr) {
		code, ok := transitionStatus[terr.Reason]
		if !ok {
			code = http.StatusInternalServerError
		}
		c.JSON(code, transitionErrorResponse{
			Error:           terr.Error(),
			OrderID:         terr.OrderID,
			AttemptedStatus: terr.Attempted,
			CurrentStatus:   terr.From,
			Reason:          terr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, staffsvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
