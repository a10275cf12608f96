// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/checkout"
	"github.com/your-org/cafe-frontend/internal/domain/tracking"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/middleware"
)

// OrderHandler handles order placement and tracking endpoints
type OrderHandler struct {
	checkout *checkout.Service
	tracking *tracking.Service
	log      logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(checkoutService *checkout.Service, trackingService *tracking.Service, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		checkout: checkoutService,
		tracking: trackingService,
		log:      log,
	}
}

// Checkout handles POST /cart/checkout[?table=]
func (h *OrderHandler) Checkout(c *gin.Context) {
	session, err := resolveTable(c, h.log)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	placed, err := h.checkout.Submit(c.Request.Context(), middleware.SessionID(c), session.TableIdentifier)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	location := "/order/status/" + placed.ID
	c.Header("Location", location)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed successfully",
		"data":     placed,
		"location": location,
	})
}

// GetOrders handles GET /orders, the current table's past orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	session, err := resolveTable(c, h.log)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	orders, err := h.tracking.History(c.Request.Context(), session.TableIdentifier)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrderStatus handles GET /order/status/:id
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	tracker, err := h.tracking.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer tracker.Close()

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    tracker.View(),
	})
}

// StreamOrderStatus handles GET /order/status/:id/stream. It sends the
// current view, then one event per change or tick, and ends once the order
// is deleted or the client goes away.
func (h *OrderHandler) StreamOrderStatus(c *gin.Context) {
	tracker, err := h.tracking.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer tracker.Close()

	startStream(c)
	initial := tracker.View()
	c.SSEvent("order", initial)
	c.Writer.Flush()
	if initial.Deleted {
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-tracker.Updates():
			if !ok {
				return
			}
			c.SSEvent("order", view)
			c.Writer.Flush()
			if view.Deleted {
				return
			}
		}
	}
}

func startStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}
