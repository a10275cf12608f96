package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/infrastructure/cafeapi"
	"github.com/your-org/cafe-frontend/internal/infrastructure/push"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
	"github.com/your-org/cafe-frontend/internal/pkg/logger"
)

type fakeOrders struct {
	orders map[string]*order.Order
	err    error
}

func (f *fakeOrders) OrderStatus(ctx context.Context, id string) (*order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, &cafeapi.Error{Op: "fetch order", StatusCode: 404}
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrders) TableOrders(ctx context.Context, tableID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range f.orders {
		if o.TableIdentifier == tableID {
			out = append(out, *o)
		}
	}
	return out, f.err
}

var setAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func pendingOrder() *order.Order {
	return &order.Order{ID: "abc123", TableIdentifier: "R2", Status: order.StatusPending}
}

func preparingOrder(minutes float64) *order.Order {
	o := pendingOrder()
	o.Status = order.StatusPreparing
	o.EstimatedTimeMinutes = &minutes
	at := setAt
	o.TimeSetAt = &at
	return o
}

type fixture struct {
	api   *fakeOrders
	hub   *push.Hub
	snaps snapshot.Store
	svc   *Service
}

func newFixture(interval time.Duration) *fixture {
	api := &fakeOrders{orders: map[string]*order.Order{"abc123": pendingOrder()}}
	hub := push.NewHub(logger.Discard())
	snaps := snapshot.NewMemoryStore(0)
	svc := NewService(api, hub, snaps, interval, logger.Discard())
	svc.now = func() time.Time { return setAt.Add(5 * time.Minute) }
	return &fixture{api: api, hub: hub, snaps: snaps, svc: svc}
}

func TestUpdateOverwritesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)

	tr, err := f.svc.Track(ctx, "abc123")
	require.NoError(t, err)
	defer tr.Close()
	assert.Equal(t, order.StatusPending, tr.View().Order.Status)

	f.hub.Publish(order.Event{Name: order.EventUpdated, OrderID: "abc123", Order: preparingOrder(10)})

	v := tr.View()
	assert.Equal(t, order.StatusPreparing, v.Order.Status)
	assert.True(t, v.Projection.Active)
	assert.Equal(t, 5, v.Projection.MinutesLeft)
	assert.InDelta(t, 0.5, v.Projection.Progress, 1e-9)

	var saved order.Order
	require.NoError(t, snapshot.GetJSON(ctx, f.snaps, snapshot.OrderKey("abc123"), &saved))
	assert.Equal(t, order.StatusPreparing, saved.Status)

	// Events for other orders are ignored
	other := preparingOrder(3)
	other.ID = "zzz"
	f.hub.Publish(order.Event{Name: order.EventUpdated, OrderID: "zzz", Order: other})
	assert.Equal(t, 10.0, *tr.View().Order.EstimatedTimeMinutes)
}

func TestDeleteMarksCancelledByStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)

	tr, err := f.svc.Track(ctx, "abc123")
	require.NoError(t, err)
	defer tr.Close()

	f.hub.Publish(order.Event{Name: order.EventDeleted, OrderID: "abc123"})

	v := tr.View()
	assert.True(t, v.Deleted)
	assert.Equal(t, DeletedMessage, v.Message)
	assert.Nil(t, v.Order)

	_, err = f.snaps.Get(ctx, snapshot.OrderKey("abc123"))
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	// A late update cannot resurrect the order
	f.hub.Publish(order.Event{Name: order.EventUpdated, OrderID: "abc123", Order: preparingOrder(10)})
	assert.True(t, tr.View().Deleted)
}

func TestStaleAndInvalidEventsDiscarded(t *testing.T) {
	f := newFixture(0)

	tr, err := f.svc.Track(context.Background(), "abc123")
	require.NoError(t, err)
	defer tr.Close()

	f.hub.Publish(order.Event{Name: order.EventUpdated, Seq: 5, OrderID: "abc123", Order: preparingOrder(10)})

	stale := preparingOrder(99)
	f.hub.Publish(order.Event{Name: order.EventUpdated, Seq: 4, OrderID: "abc123", Order: stale})
	assert.Equal(t, 10.0, *tr.View().Order.EstimatedTimeMinutes)

	backwards := pendingOrder()
	f.hub.Publish(order.Event{Name: order.EventUpdated, Seq: 6, OrderID: "abc123", Order: backwards})
	assert.Equal(t, order.StatusPreparing, tr.View().Order.Status)
}

func TestSequencedUpdateAfterTimestampedFetch(t *testing.T) {
	f := newFixture(0)
	fetched := pendingOrder()
	stamp := setAt.Add(-time.Minute)
	fetched.UpdatedAt = &stamp
	f.api.orders["abc123"] = fetched

	tr, err := f.svc.Track(context.Background(), "abc123")
	require.NoError(t, err)
	defer tr.Close()

	f.hub.Publish(order.Event{Name: order.EventUpdated, Seq: 1, OrderID: "abc123", Order: preparingOrder(10)})
	assert.Equal(t, order.StatusPreparing, tr.View().Order.Status)

	done := preparingOrder(10)
	done.Status = order.StatusDone
	f.hub.Publish(order.Event{Name: order.EventUpdated, Seq: 2, OrderID: "abc123", Order: done})
	assert.Equal(t, order.StatusDone, tr.View().Order.Status)
}

func TestViewListsItemsWithQuantities(t *testing.T) {
	f := newFixture(0)
	o := pendingOrder()
	o.Items = []order.ItemRef{{ID: "m1", Name: "Latte"}, {ID: "m2", Name: "Cake"}}
	o.Quantities = []int{2, 1}
	f.api.orders["abc123"] = o

	tr, err := f.svc.Track(context.Background(), "abc123")
	require.NoError(t, err)
	defer tr.Close()

	lines := tr.View().Lines
	require.Len(t, lines, 2)
	assert.Equal(t, "Latte", lines[0].Item.Name)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestFetchFailureFallsBackToSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	require.NoError(t, snapshot.PutJSON(ctx, f.snaps, snapshot.OrderKey("abc123"), preparingOrder(10)))
	f.api.err = cafeapi.ErrUnavailable

	tr, err := f.svc.Track(ctx, "abc123")
	require.NoError(t, err)
	defer tr.Close()

	v := tr.View()
	assert.True(t, v.Restored)
	assert.Equal(t, order.StatusPreparing, v.Order.Status)

	f.hub.Publish(order.Event{Name: order.EventUpdated, OrderID: "abc123", Order: preparingOrder(12)})
	assert.False(t, tr.View().Restored)
}

func TestFetchFailureWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)

	_, err := f.svc.Track(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	f.api.err = errors.New("connection refused")
	_, err = f.svc.Track(ctx, "abc123")
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.NotErrorIs(t, err, ErrOrderNotFound)

	// A corrupt snapshot counts as absent
	require.NoError(t, f.snaps.Put(ctx, snapshot.OrderKey("abc123"), []byte("{oops")))
	_, err = f.svc.Track(ctx, "abc123")
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestTickerRunsOnlyWhilePreparing(t *testing.T) {
	f := newFixture(5 * time.Millisecond)
	f.api.orders["abc123"] = preparingOrder(10)

	tr, err := f.svc.Track(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, tr.Ticking())

	select {
	case v := <-tr.Updates():
		assert.True(t, v.Projection.Active)
	case <-time.After(time.Second):
		t.Fatal("no tick delivered")
	}

	done := preparingOrder(10)
	done.Status = order.StatusDone
	f.hub.Publish(order.Event{Name: order.EventUpdated, OrderID: "abc123", Order: done})
	assert.False(t, tr.Ticking())
	assert.False(t, tr.View().Projection.Active)

	tr.Close()
	assert.Equal(t, 0, f.hub.Subscribers())

	// Drain whatever was buffered; the channel must then be closed
	for range tr.Updates() {
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newFixture(time.Millisecond)
	f.api.orders["abc123"] = preparingOrder(10)

	tr, err := f.svc.Track(context.Background(), "abc123")
	require.NoError(t, err)

	tr.Close()
	tr.Close()
	assert.False(t, tr.Ticking())

	// Events after close are ignored
	f.hub.Publish(order.Event{Name: order.EventDeleted, OrderID: "abc123"})
	assert.False(t, tr.View().Deleted)
}

func TestHistory(t *testing.T) {
	f := newFixture(0)

	orders, err := f.svc.History(context.Background(), "R2")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "abc123", orders[0].ID)
}
