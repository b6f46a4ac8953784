package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"restaurant-ops/internal/domain"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const establishmentCtxKey ctxKey = "establishment"

// establishmentMiddleware resolves :establishmentKey and stores the
// establishment on the request context.
func establishmentMiddleware(repo establishmentRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("establishmentKey"))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "establishment key required"})
			return
		}
		est, err := repo.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "establishment not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load establishment"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), establishmentCtxKey, est)
		c.Request = c.Request.WithContext(ctx)
		c.Set("establishmentID", est.ID)
		c.Next()
	}
}

func establishmentFrom(c *gin.Context) domain.Establishment {
	est, _ := c.Request.Context().Value(establishmentCtxKey).(*domain.Establishment)
	if est == nil {
		return domain.Establishment{}
	}
	return *est
}
