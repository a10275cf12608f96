// internal/domain/tracking/service.go
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/infrastructure/cafeapi"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrLoadFailed    = errors.New("failed to load order")
)

// OrderFetcher reads orders from the café API
type OrderFetcher interface {
	OrderStatus(ctx context.Context, id string) (*order.Order, error)
	TableOrders(ctx context.Context, tableID string) ([]order.Order, error)
}

// Subscriber delivers push events
type Subscriber interface {
	Subscribe(fn func(order.Event)) func()
}

// Service opens order trackers
type Service struct {
	orders    OrderFetcher
	events    Subscriber
	snapshots snapshot.Store
	interval  time.Duration
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new tracking service. interval is the projection
// refresh cadence while an order is being prepared.
func NewService(orders OrderFetcher, events Subscriber, snapshots snapshot.Store, interval time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		orders:    orders,
		events:    events,
		snapshots: snapshots,
		interval:  interval,
		log:       log.WithField("component", "tracking"),
		now:       time.Now,
	}
}

// Track fetches order id once and returns a tracker that follows its push
// events. The caller must Close the tracker.
func (s *Service) Track(ctx context.Context, id string) (*Tracker, error) {
	o, restored, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	t := newTracker(s, id, o, restored)
	t.unsubscribe = s.events.Subscribe(t.HandleEvent)
	return t, nil
}

// History lists the past orders of a table
func (s *Service) History(ctx context.Context, tableID string) ([]order.Order, error) {
	orders, err := s.orders.TableOrders(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for table %s: %w", tableID, err)
	}
	return orders, nil
}

func (s *Service) load(ctx context.Context, id string) (*order.Order, bool, error) {
	o, err := s.orders.OrderStatus(ctx, id)
	if err == nil {
		if err := snapshot.PutJSON(ctx, s.snapshots, snapshot.OrderKey(id), o); err != nil {
			s.log.WithError(err).WithField("order_id", id).Warn("Failed to save order snapshot")
		}
		return o, false, nil
	}

	var cached order.Order
	snapErr := snapshot.GetJSON(ctx, s.snapshots, snapshot.OrderKey(id), &cached)
	if snapErr == nil {
		s.log.WithError(err).WithField("order_id", id).Info("Order fetch failed, restored from snapshot")
		return &cached, true, nil
	}
	if errors.Is(snapErr, snapshot.ErrCorrupt) {
		s.log.WithError(snapErr).WithField("order_id", id).Warn("Discarding corrupt order snapshot")
	}

	if cafeapi.IsNotFound(err) {
		return nil, false, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return nil, false, fmt.Errorf("%w: %v", ErrLoadFailed, err)
}

func (s *Service) saveSnapshot(o *order.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := snapshot.PutJSON(ctx, s.snapshots, snapshot.OrderKey(o.ID), o); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("Failed to save order snapshot")
	}
}

func (s *Service) eraseSnapshot(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.snapshots.Delete(ctx, snapshot.OrderKey(id)); err != nil {
		s.log.WithError(err).WithField("order_id", id).Warn("Failed to erase order snapshot")
	}
}
