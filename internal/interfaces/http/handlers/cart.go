// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/cart"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts *cart.Service
	log   logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

// AddItemRequest adds one unit of a menu item
type AddItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

// UpdateItemRequest sets the quantity of a cart line
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	h.respondCart(c, http.StatusOK, "Cart retrieved successfully", h.carts.Cart(middleware.SessionID(c)))
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if _, err := resolveTable(c, h.log); err != nil {
		respondError(c, h.log, err)
		return
	}

	store, err := h.carts.AddItem(c.Request.Context(), middleware.SessionID(c), req.ItemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondCart(c, http.StatusOK, "Item added to cart successfully", store)
}

// UpdateItem handles PUT /cart/items/:id. Quantities of zero or less remove
// the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store := h.carts.Cart(middleware.SessionID(c))
	if err := store.SetQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondCart(c, http.StatusOK, "Cart updated successfully", store)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	store := h.carts.Cart(middleware.SessionID(c))
	if err := store.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondCart(c, http.StatusOK, "Item removed from cart", store)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store := h.carts.Cart(middleware.SessionID(c))
	if err := store.Clear(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondCart(c, http.StatusOK, "Cart cleared successfully", store)
}

// respondCart answers with the cart lines and totals. A ?table= on any cart
// request is remembered like on the menu.
func (h *CartHandler) respondCart(c *gin.Context, status int, message string, store *cart.Store) {
	ctx := c.Request.Context()
	session, _ := resolveTable(c, h.log)

	lines, err := store.Lines(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	totals, err := store.Totals(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(status, gin.H{
		"message": message,
		"data": gin.H{
			"items":  lines,
			"totals": totals,
			"table":  session.TableIdentifier,
		},
	})
}
