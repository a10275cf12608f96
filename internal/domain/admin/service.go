// internal/domain/admin/service.go
package admin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/infrastructure/cafeapi"
)

// API is the admin surface of the café API
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	AdminOrders(ctx context.Context, token string) ([]order.Order, error)
	SetOrderTime(ctx context.Context, token, id string, minutes float64) error
	SetOrderStatus(ctx context.Context, token, id string, status order.Status) error
	DeleteOrder(ctx context.Context, token, id string) error
	CreateItem(ctx context.Context, token string, input cafeapi.ItemInput) error
	UpdateItem(ctx context.Context, token, id string, input cafeapi.ItemInput) error
	DeleteItem(ctx context.Context, token, id string) error
}

// Subscriber delivers push events
type Subscriber interface {
	Subscribe(fn func(order.Event)) func()
}

// TokenChecker rejects tokens that are missing or known to be expired
type TokenChecker interface {
	Check(token string) error
}

// MenuRefresher refetches the menu after item writes
type MenuRefresher interface {
	Menu(ctx context.Context) (*menu.Listing, error)
}

// Service runs admin views and commands
type Service struct {
	api      API
	events   Subscriber
	tokens   TokenChecker
	menu     MenuRefresher
	interval time.Duration
	location *time.Location
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewService creates a new admin service. interval is the projection refresh
// cadence; loc is the café's timezone used for the income report.
func NewService(api API, events Subscriber, tokens TokenChecker, menu MenuRefresher, interval time.Duration, loc *time.Location, log logrus.FieldLogger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		api:      api,
		events:   events,
		tokens:   tokens,
		menu:     menu,
		interval: interval,
		location: loc,
		log:      log.WithField("component", "admin"),
		now:      time.Now,
	}
}

// Login exchanges credentials for the API token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	token, err := s.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if cafeapi.IsUnauthorized(err) || isStatus(err, 400) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	s.log.WithField("email", email).Info("Admin logged in")
	return token, nil
}

// Authorize checks a stored token locally
func (s *Service) Authorize(token string) error {
	if err := s.tokens.Check(token); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return nil
}

// Open fetches the order list and starts following push events. The caller
// must Close the view.
func (s *Service) Open(ctx context.Context, token string) (*LiveView, error) {
	v, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	v.unsubscribe = s.events.Subscribe(v.HandleEvent)
	return v, nil
}

// Snapshot fetches the order list once without following events
func (s *Service) Snapshot(ctx context.Context, token string) (*LiveView, error) {
	return s.load(ctx, token)
}

func (s *Service) load(ctx context.Context, token string) (*LiveView, error) {
	if err := s.Authorize(token); err != nil {
		return nil, err
	}

	orders, err := s.api.AdminOrders(ctx, token)
	if err != nil {
		return nil, s.translate(err)
	}
	return newLiveView(s, token, orders), nil
}

// SetEstimatedTime validates raw minutes and sends them for one order
func (s *Service) SetEstimatedTime(ctx context.Context, token, id, raw string) error {
	minutes, err := ParseMinutes(raw)
	if err != nil {
		return err
	}
	if err := s.Authorize(token); err != nil {
		return err
	}

	if err := s.api.SetOrderTime(ctx, token, id, minutes); err != nil {
		return s.translateOrder(err)
	}

	s.log.WithFields(logrus.Fields{"order_id": id, "minutes": minutes}).Info("Estimated time set")
	return nil
}

// SetStatus closes an order as done or canceled. The order's current status
// is read from a fresh list.
func (s *Service) SetStatus(ctx context.Context, token, id string, status order.Status) error {
	if status != order.StatusDone && status != order.StatusCanceled {
		return ErrInvalidStatus
	}

	v, err := s.Snapshot(ctx, token)
	if err != nil {
		return err
	}
	defer v.Close()
	return v.SetStatus(ctx, id, status)
}

// DeleteOrder removes an order once confirmed
func (s *Service) DeleteOrder(ctx context.Context, token, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.api.DeleteOrder(ctx, token, id); err != nil {
		return s.translateOrder(err)
	}

	s.log.WithField("order_id", id).Info("Order deleted")
	return nil
}

// ParseMinutes reads an estimated preparation time
func ParseMinutes(raw string) (float64, error) {
	minutes, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return 0, ErrInvalidTime
	}
	return minutes, nil
}

// ValidateItem checks an item form before it is sent
func ValidateItem(input cafeapi.ItemInput) error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Category) == "" || !input.Price.IsPositive() {
		return ErrInvalidItem
	}
	return nil
}

// CreateItem adds a menu item and refreshes the cached menu
func (s *Service) CreateItem(ctx context.Context, token string, input cafeapi.ItemInput) error {
	if err := ValidateItem(input); err != nil {
		return err
	}
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.api.CreateItem(ctx, token, input); err != nil {
		return s.translate(err)
	}

	s.log.WithField("name", input.Name).Info("Menu item created")
	s.refreshMenu(ctx)
	return nil
}

// UpdateItem edits a menu item and refreshes the cached menu
func (s *Service) UpdateItem(ctx context.Context, token, id string, input cafeapi.ItemInput) error {
	if err := ValidateItem(input); err != nil {
		return err
	}
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.api.UpdateItem(ctx, token, id, input); err != nil {
		return s.translate(err)
	}

	s.log.WithField("item_id", id).Info("Menu item updated")
	s.refreshMenu(ctx)
	return nil
}

// DeleteItem removes a menu item once confirmed
func (s *Service) DeleteItem(ctx context.Context, token, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.api.DeleteItem(ctx, token, id); err != nil {
		return s.translate(err)
	}

	s.log.WithField("item_id", id).Info("Menu item deleted")
	s.refreshMenu(ctx)
	return nil
}

// MonthlyIncome builds the income report for month ("YYYY-MM")
func (s *Service) MonthlyIncome(ctx context.Context, token, month string) (*IncomeReport, error) {
	year, mon, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}

	v, err := s.Snapshot(ctx, token)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	return BuildIncomeReport(v.Orders(), year, mon, s.location), nil
}

func (s *Service) refreshMenu(ctx context.Context) {
	if s.menu == nil {
		return
	}
	if _, err := s.menu.Menu(ctx); err != nil {
		s.log.WithError(err).Warn("Failed to refresh menu after item change")
	}
}

// translate maps API rejections of the credential onto ErrUnauthenticated
func (s *Service) translate(err error) error {
	if cafeapi.IsUnauthorized(err) {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return err
}

func (s *Service) translateOrder(err error) error {
	if cafeapi.IsNotFound(err) {
		return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
	}
	return s.translate(err)
}

func isStatus(err error, status int) bool {
	var apiErr *cafeapi.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
