package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type addLineRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type updateLineRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handlers) sessionCart(c *gin.Context) *cart.Engine {
	return h.deps.Carts.Get(sessionID(c))
}

func (h *handlers) respondCart(c *gin.Context, engine *cart.Engine) {
	c.JSON(http.StatusOK, toCartResponse(engine.Snapshot(), h.requestLanguage(c)))
}

func (h *handlers) getCart(c *gin.Context) {
	h.respondCart(c, h.sessionCart(c))
}

// addCartLine resolves the product and size against the live catalog so the
// line captures the current price and stock ceiling.
func (h *handlers) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" || req.VariantID == "" {
		badRequest(c, "productId and variantId are required")
		return
	}
	p, err := h.deps.Catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var variant *domain.Variant
	for i := range p.Variants {
		if p.Variants[i].ID == req.VariantID {
			variant = &p.Variants[i]
			break
		}
	}
	if variant == nil {
		writeError(c, h.logger, fmt.Errorf("variant %s: %w", req.VariantID, domain.ErrNotFound))
		return
	}
	if variant.Quantity <= 0 {
		writeError(c, h.logger, fmt.Errorf("size %s: %w", variant.Size, domain.ErrInsufficientStock))
		return
	}

	engine := h.sessionCart(c)
	engine.Add(*p, *variant, req.Quantity)
	h.respondCart(c, engine)
}

func (h *handlers) updateCartLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}
	engine := h.sessionCart(c)
	engine.UpdateQuantity(c.Param("productId"), c.Param("variantId"), *req.Quantity)
	h.respondCart(c, engine)
}

func (h *handlers) removeCartLine(c *gin.Context) {
	engine := h.sessionCart(c)
	engine.Remove(c.Param("productId"), c.Param("variantId"))
	h.respondCart(c, engine)
}

func (h *handlers) clearCart(c *gin.Context) {
	engine := h.sessionCart(c)
	engine.Clear()
	h.respondCart(c, engine)
}

func (h *handlers) openCart(c *gin.Context) {
	engine := h.sessionCart(c)
	engine.Open()
	h.respondCart(c, engine)
}

func (h *handlers) closeCart(c *gin.Context) {
	engine := h.sessionCart(c)
	engine.Close()
	h.respondCart(c, engine)
}
