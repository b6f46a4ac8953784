package httpserver

import (
	"net/http"
	"strings"

	"restaurant-ops/internal/auth"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) staffLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		badRequest(c, "email and password are required")
		return
	}
	est := establishmentFrom(c)
	member, token, err := h.deps.Staff.Login(c.Request.Context(), est.ID, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"tokenType":   "Bearer",
		"expiresIn":   int(h.deps.Tokens.TTL().Seconds()),
		"staff":       member,
	})
}

func (h *handlers) staffMe(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	member, err := h.deps.Staff.Get(c.Request.Context(), claims.EstablishmentID, claims.StaffID())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}
