// internal/domain/tracking/tracker.go
package tracking

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/pkg/ticker"
)

// DeletedMessage is shown once staff removed the order
const DeletedMessage = "This order was cancelled by staff"

// View is what the order status page renders
type View struct {
	OrderID    string           `json:"order_id"`
	Order      *order.Order     `json:"order,omitempty"`
	Lines      []order.Line     `json:"lines,omitempty"`
	Projection order.Projection `json:"projection"`
	// Restored is set while the order comes from the local snapshot
	Restored bool   `json:"restored"`
	Deleted  bool   `json:"deleted"`
	Message  string `json:"message,omitempty"`
}

// Tracker follows one order. All state changes are serialized.
type Tracker struct {
	svc *Service
	id  string
	log logrus.FieldLogger

	mu       sync.Mutex
	order    *order.Order
	restored bool
	deleted  bool
	closed   bool
	seq      *order.Sequencer
	updates  chan View
	tick     *ticker.Loop

	unsubscribe func()
}

func newTracker(svc *Service, id string, o *order.Order, restored bool) *Tracker {
	t := &Tracker{
		svc:      svc,
		id:       id,
		log:      svc.log.WithField("order_id", id),
		order:    o,
		restored: restored,
		seq:      order.NewSequencer(),
		updates:  make(chan View, 1),
	}
	t.seq.AcceptUpdate(id, o.Version())
	t.tick = ticker.New(svc.interval, t.onTick)

	t.mu.Lock()
	t.syncTicker()
	t.mu.Unlock()
	return t
}

// ID returns the tracked order id
func (t *Tracker) ID() string {
	return t.id
}

// View returns the current state with a fresh projection
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view()
}

// Updates delivers a new View after every change and every tick. Only the
// latest undelivered view is kept. The channel is closed by Close.
func (t *Tracker) Updates() <-chan View {
	return t.updates
}

// Ticking reports whether the projection refresh is running
func (t *Tracker) Ticking() bool {
	return t.tick.Running()
}

// HandleEvent applies a push event addressed to the tracked order
func (t *Tracker) HandleEvent(evt order.Event) {
	if evt.OrderID != t.id {
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	switch evt.Name {
	case order.EventCreated, order.EventUpdated:
		if evt.Order == nil || !t.seq.AcceptUpdate(t.id, evt.Version()) {
			t.log.WithField("event", evt.Name).Debug("Discarding stale order event")
			t.mu.Unlock()
			return
		}
		if t.order != nil && !order.CanTransition(t.order.Status, evt.Order.Status) {
			t.log.WithFields(logrus.Fields{
				"from": t.order.Status,
				"to":   evt.Order.Status,
			}).Warn("Ignoring invalid status transition")
			t.mu.Unlock()
			return
		}

		t.order = evt.Order
		t.restored = false
		t.syncTicker()
		t.emit(t.view())
		updated := t.order
		t.mu.Unlock()

		t.svc.saveSnapshot(updated)

	case order.EventDeleted:
		if !t.seq.AcceptDelete(t.id, evt.Version()) {
			t.mu.Unlock()
			return
		}

		t.deleted = true
		t.syncTicker()
		t.emit(t.view())
		t.mu.Unlock()

		t.log.Info("Order deleted by staff")
		t.svc.eraseSnapshot(t.id)

	default:
		t.mu.Unlock()
	}
}

// Close unsubscribes from push events, stops the ticker and closes Updates
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.tick.Stop()
	close(t.updates)
	t.mu.Unlock()

	if t.unsubscribe != nil {
		t.unsubscribe()
	}
}

func (t *Tracker) onTick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.emit(t.view())
}

// syncTicker runs the ticker exactly while the order is being prepared.
// Caller holds mu.
func (t *Tracker) syncTicker() {
	if !t.closed && !t.deleted && order.Ticking(t.order) {
		t.tick.Start()
		return
	}
	t.tick.Stop()
}

// emit replaces any undelivered view with v. Caller holds mu.
func (t *Tracker) emit(v View) {
	if t.closed {
		return
	}
	select {
	case t.updates <- v:
		return
	default:
	}

	select {
	case <-t.updates:
	default:
	}
	select {
	case t.updates <- v:
	default:
	}
}

// view builds the current View. Caller holds mu.
func (t *Tracker) view() View {
	v := View{
		OrderID:  t.id,
		Restored: t.restored,
		Deleted:  t.deleted,
	}
	if t.deleted {
		v.Message = DeletedMessage
		return v
	}
	v.Order = t.order
	v.Lines = t.order.Lines()
	v.Projection = order.Project(t.order, t.svc.now())
	return v
}
