// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
	"github.com/your-org/cafe-frontend/internal/domain/admin"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/domain/table"
	"github.com/your-org/cafe-frontend/internal/infrastructure/cafeapi"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/middleware"
	"github.com/your-org/cafe-frontend/internal/pkg/upload"
)

// IncomeRenderer renders an income report to PDF
type IncomeRenderer interface {
	GenerateIncomeReport(report *admin.IncomeReport) (*bytes.Buffer, error)
}

// AdminHandler handles the admin panel endpoints
type AdminHandler struct {
	admin  *admin.Service
	pdf    IncomeRenderer
	config *config.Config
	log    logrus.FieldLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *admin.Service, pdf IncomeRenderer, cfg *config.Config, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		admin:  adminService,
		pdf:    pdf,
		config: cfg,
		log:    log,
	}
}

// LoginRequest carries admin credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StatusRequest closes an order
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	token, err := h.admin.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := middleware.StoreAdminToken(c, token); err != nil {
		h.log.WithError(err).Error("Failed to store admin session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully"})
}

// Logout handles POST /admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := middleware.ClearAdminToken(c); err != nil {
		h.log.WithError(err).Warn("Failed to clear admin session")
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Logged out successfully",
		"redirect": admin.LoginPath,
	})
}

// GetOrders handles GET /admin/orders
func (h *AdminHandler) GetOrders(c *gin.Context) {
	view, err := h.admin.Snapshot(c.Request.Context(), middleware.AdminToken(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer view.Close()

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    view.Board(),
	})
}

// StreamOrders handles GET /admin/orders/stream. It sends the board, then
// one event per change or tick, until the client goes away.
func (h *AdminHandler) StreamOrders(c *gin.Context) {
	view, err := h.admin.Open(c.Request.Context(), middleware.AdminToken(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer view.Close()

	startStream(c)
	c.SSEvent("orders", view.Board())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case board, ok := <-view.Updates():
			if !ok {
				return
			}
			c.SSEvent("orders", board)
			c.Writer.Flush()
		}
	}
}

// SetOrderTime handles PUT /admin/orders/:id/time with {"time": minutes}
func (h *AdminHandler) SetOrderTime(c *gin.Context) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, admin.ErrInvalidTime)
		return
	}

	raw := rawText(body["time"])
	if err := h.admin.SetEstimatedTime(c.Request.Context(), middleware.AdminToken(c), c.Param("id"), raw); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Estimated time updated"})
}

// SetOrderStatus handles PUT /admin/orders/:id/status
func (h *AdminHandler) SetOrderStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, admin.ErrInvalidStatus)
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.log, admin.ErrInvalidStatus)
		return
	}

	if err := h.admin.SetStatus(c.Request.Context(), middleware.AdminToken(c), c.Param("id"), status); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

// DeleteOrder handles DELETE /admin/orders/:id?confirm=true
func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	if err := h.admin.DeleteOrder(c.Request.Context(), middleware.AdminToken(c), c.Param("id"), confirmed(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// CreateItem handles POST /admin/items (multipart form)
func (h *AdminHandler) CreateItem(c *gin.Context) {
	input, err := readItemForm(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.admin.CreateItem(c.Request.Context(), middleware.AdminToken(c), input); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item created successfully"})
}

// UpdateItem handles PUT /admin/items/:id (multipart form)
func (h *AdminHandler) UpdateItem(c *gin.Context) {
	input, err := readItemForm(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.admin.UpdateItem(c.Request.Context(), middleware.AdminToken(c), c.Param("id"), input); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully"})
}

// DeleteItem handles DELETE /admin/items/:id?confirm=true
func (h *AdminHandler) DeleteItem(c *gin.Context) {
	if err := h.admin.DeleteItem(c.Request.Context(), middleware.AdminToken(c), c.Param("id"), confirmed(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// GetIncome handles GET /admin/income?month=YYYY-MM[&format=pdf]
func (h *AdminHandler) GetIncome(c *gin.Context) {
	report, err := h.admin.MonthlyIncome(c.Request.Context(), middleware.AdminToken(c), c.Query("month"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if c.Query("format") != "pdf" {
		c.JSON(http.StatusOK, gin.H{
			"message": "Income report generated",
			"data":    report,
		})
		return
	}

	buf, err := h.pdf.GenerateIncomeReport(report)
	if err != nil {
		h.log.WithError(err).WithField("month", report.Month).Error("Failed to generate income PDF")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="income-%s.pdf"`, report.Month))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// GetTables handles GET /admin/tables
func (h *AdminHandler) GetTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Tables retrieved successfully",
		"data":    table.Layout(h.config.App.PublicURL),
	})
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

// rawText turns a JSON value into the text the admin typed: strings are
// unquoted, numbers kept as written
func rawText(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(value))
}

func readItemForm(c *gin.Context) (cafeapi.ItemInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil {
		return cafeapi.ItemInput{}, admin.ErrInvalidItem
	}

	input := cafeapi.ItemInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Price:       price,
		Category:    strings.TrimSpace(c.PostForm("category")),
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return input, nil
	}
	if err != nil {
		return cafeapi.ItemInput{}, fmt.Errorf("%w: unreadable image", admin.ErrInvalidItem)
	}

	file, err := header.Open()
	if err != nil {
		return cafeapi.ItemInput{}, fmt.Errorf("%w: unreadable image", admin.ErrInvalidItem)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, upload.MaxImageBytes+1))
	if err != nil {
		return cafeapi.ItemInput{}, fmt.Errorf("%w: unreadable image", admin.ErrInvalidItem)
	}
	if _, err := upload.ValidateImage(header.Filename, content, upload.MaxImageBytes); err != nil {
		return cafeapi.ItemInput{}, fmt.Errorf("%w: %v", admin.ErrInvalidItem, err)
	}

	input.Image = &cafeapi.Upload{Filename: header.Filename, Content: content}
	return input, nil
}
