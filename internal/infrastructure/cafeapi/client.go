// internal/infrastructure/cafeapi/client.go
package cafeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/domain/order"
)

// Client talks to the café REST API
type Client struct {
	baseURL    string
	authHeader string
	http       *http.Client
	log        logrus.FieldLogger
}

// NewClient creates an API client from configuration
func NewClient(cfg *config.Config, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL:    cfg.CafeAPI.BaseURL,
		authHeader: cfg.CafeAPI.AuthHeader,
		http:       &http.Client{Timeout: cfg.CafeAPI.Timeout},
		log:        log.WithField("component", "cafeapi"),
	}
}

// ItemInput is the form sent when creating or editing a menu item
type ItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       *Upload         `json:"-"`
}

// Upload is an image attached to a menu item
type Upload struct {
	Filename string
	Content  []byte
}

// Menu handles GET /menu
func (c *Client) Menu(ctx context.Context) ([]menu.Item, error) {
	var items []menu.Item
	if err := c.doJSON(ctx, "fetch menu", http.MethodGet, "/menu", "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Categories handles GET /categories
func (c *Client) Categories(ctx context.Context) ([]menu.Category, error) {
	var categories []menu.Category
	if err := c.doJSON(ctx, "fetch categories", http.MethodGet, "/categories", "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateOrder handles POST /orders
func (c *Client) CreateOrder(ctx context.Context, draft order.Draft) (*order.Order, error) {
	var created order.Order
	if err := c.doJSON(ctx, "create order", http.MethodPost, "/orders", "", draft, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: create order: response has no order id", ErrUnavailable)
	}
	return &created, nil
}

// OrderStatus handles GET /orders/status/:id
func (c *Client) OrderStatus(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	path := "/orders/status/" + url.PathEscape(id)
	if err := c.doJSON(ctx, "fetch order", http.MethodGet, path, "", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// TableOrders handles GET /orders?tableIdentifier=
func (c *Client) TableOrders(ctx context.Context, tableID string) ([]order.Order, error) {
	var orders []order.Order
	path := "/orders?" + url.Values{"tableIdentifier": {tableID}}.Encode()
	if err := c.doJSON(ctx, "fetch table orders", http.MethodGet, path, "", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Login handles POST /admin/login and returns the opaque credential
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, "login", http.MethodPost, "/admin/login", "", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login: response has no token", ErrUnavailable)
	}
	return resp.Token, nil
}

// AdminOrders handles GET /admin/orders
func (c *Client) AdminOrders(ctx context.Context, token string) ([]order.Order, error) {
	var orders []order.Order
	if err := c.doJSON(ctx, "fetch admin orders", http.MethodGet, "/admin/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOrderTime handles PUT /admin/orders/:id/time
func (c *Client) SetOrderTime(ctx context.Context, token, id string, minutes float64) error {
	path := "/admin/orders/" + url.PathEscape(id) + "/time"
	return c.doJSON(ctx, "set order time", http.MethodPut, path, token, map[string]float64{"time": minutes}, nil)
}

// SetOrderStatus handles PUT /admin/orders/:id/status
func (c *Client) SetOrderStatus(ctx context.Context, token, id string, status order.Status) error {
	path := "/admin/orders/" + url.PathEscape(id) + "/status"
	return c.doJSON(ctx, "set order status", http.MethodPut, path, token, map[string]order.Status{"status": status}, nil)
}

// DeleteOrder handles DELETE /admin/orders/:id
func (c *Client) DeleteOrder(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, "delete order", http.MethodDelete, "/admin/orders/"+url.PathEscape(id), token, nil, nil)
}

// CreateItem handles POST /admin/items
func (c *Client) CreateItem(ctx context.Context, token string, input ItemInput) error {
	return c.sendItem(ctx, "create item", http.MethodPost, "/admin/items", token, input)
}

// UpdateItem handles PUT /admin/items/:id
func (c *Client) UpdateItem(ctx context.Context, token, id string, input ItemInput) error {
	return c.sendItem(ctx, "update item", http.MethodPut, "/admin/items/"+url.PathEscape(id), token, input)
}

// DeleteItem handles DELETE /admin/items/:id
func (c *Client) DeleteItem(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, "delete item", http.MethodDelete, "/admin/items/"+url.PathEscape(id), token, nil, nil)
}

// sendItem posts a menu item as multipart form data, the way the admin
// panel uploads images
func (c *Client) sendItem(ctx context.Context, op, method, path, token string, input ItemInput) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", input.Name},
		{"description", input.Description},
		{"price", input.Price.String()},
		{"category", input.Category},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("%s: failed to encode form: %w", op, err)
		}
	}

	if input.Image != nil {
		part, err := form.CreateFormFile("image", input.Image.Filename)
		if err != nil {
			return fmt.Errorf("%s: failed to encode image: %w", op, err)
		}
		if _, err := part.Write(input.Image.Content); err != nil {
			return fmt.Errorf("%s: failed to encode image: %w", op, err)
		}
	}

	if err := form.Close(); err != nil {
		return fmt.Errorf("%s: failed to encode form: %w", op, err)
	}

	return c.do(ctx, op, method, path, token, &buf, form.FormDataContentType(), nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, token, reader, contentType, out)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(c.authHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"op": op, "path": path}).Warn("Cafe API request failed")
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: failed to read response: %v", ErrUnavailable, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(payload),
		}
		c.log.WithFields(logrus.Fields{
			"op":     op,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("Cafe API returned an error")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %s: failed to decode response: %v", ErrUnavailable, op, err)
	}
	return nil
}

// extractMessage reads {"error": "..."} or {"message": "..."} bodies
func extractMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}

	for _, msg := range []string{body.Error, body.Message, body.Msg} {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	return ""
}
