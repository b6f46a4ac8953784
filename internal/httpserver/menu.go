package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) menu(c *gin.Context) {
	m, err := h.deps.Menu.Menu(c.Request.Context(), establishmentFrom(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMenu(*m))
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Menu.Products(c.Request.Context(), establishmentFrom(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "results": toProducts(products)})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Menu.Product(c.Request.Context(), establishmentFrom(c).ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}
