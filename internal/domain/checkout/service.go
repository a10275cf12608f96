// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/cart"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/domain/table"
	"github.com/your-org/cafe-frontend/internal/infrastructure/cafeapi"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
)

// DefaultFailureMessage is shown when the API gives no reason
const DefaultFailureMessage = "Failed to place order"

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
)

// SubmissionError is a failed order placement. The cart is left untouched.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// OrderCreator places orders with the café API
type OrderCreator interface {
	CreateOrder(ctx context.Context, draft order.Draft) (*order.Order, error)
}

// Carts hands out the cart of a browser session
type Carts interface {
	Cart(sessionID string) *cart.Store
}

// Service turns a session's cart into a placed order
type Service struct {
	carts     Carts
	orders    OrderCreator
	snapshots snapshot.Store
	log       logrus.FieldLogger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService creates a new checkout service
func NewService(carts Carts, orders OrderCreator, snapshots snapshot.Store, log logrus.FieldLogger) *Service {
	return &Service{
		carts:     carts,
		orders:    orders,
		snapshots: snapshots,
		log:       log,
		inFlight:  make(map[string]struct{}),
	}
}

// Submit places the cart of sessionID as an order for tableID. On success the
// cart is cleared and the placed order is returned for tracking.
func (s *Service) Submit(ctx context.Context, sessionID, tableID string) (*order.Order, error) {
	if tableID == "" {
		return nil, table.ErrMissingTable
	}

	if !s.begin(sessionID) {
		return nil, ErrSubmissionInProgress
	}
	defer s.end(sessionID)

	store := s.carts.Cart(sessionID)
	draft, err := BuildDraft(ctx, store, tableID)
	if err != nil {
		return nil, err
	}

	placed, err := s.orders.CreateOrder(ctx, draft)
	if err != nil {
		msg, ok := cafeapi.ServerMessage(err)
		if !ok {
			msg = DefaultFailureMessage
		}
		s.log.WithError(err).WithFields(logrus.Fields{
			"table": tableID,
			"items": len(draft.Items),
		}).Warn("Order placement failed")
		return nil, &SubmissionError{Message: msg, Err: err}
	}

	if err := store.Clear(ctx); err != nil {
		s.log.WithError(err).WithField("order_id", placed.ID).Error("Failed to clear cart after placing order")
	}
	if err := snapshot.PutJSON(ctx, s.snapshots, snapshot.OrderKey(placed.ID), placed); err != nil {
		s.log.WithError(err).WithField("order_id", placed.ID).Warn("Failed to save order snapshot")
	}

	s.log.WithFields(logrus.Fields{
		"order_id": placed.ID,
		"table":    tableID,
		"total":    draft.Total.String(),
	}).Info("Order placed")

	return placed, nil
}

// BuildDraft converts cart lines into the order creation payload
func BuildDraft(ctx context.Context, store *cart.Store, tableID string) (order.Draft, error) {
	lines, err := store.Lines(ctx)
	if err != nil {
		return order.Draft{}, err
	}
	if len(lines) == 0 {
		return order.Draft{}, ErrEmptyCart
	}

	total, err := store.Total(ctx)
	if err != nil {
		return order.Draft{}, err
	}

	draft := order.Draft{
		Items:           make([]string, len(lines)),
		Quantities:      make([]int, len(lines)),
		Total:           total,
		TableIdentifier: tableID,
		Status:          order.StatusPending,
	}
	for i, line := range lines {
		draft.Items[i] = line.ItemID
		draft.Quantities[i] = line.Quantity
	}
	return draft, nil
}

func (s *Service) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) end(sessionID string) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}
