// internal/domain/admin/liveview.go
package admin

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/pkg/ticker"
)

// Entry is one order on the admin board with its projection
type Entry struct {
	Order      order.Order      `json:"order"`
	Lines      []order.Line     `json:"lines"`
	Projection order.Projection `json:"projection"`
}

// Board is what the admin order list renders
type Board struct {
	Orders []Entry `json:"orders"`
}

// LiveView is the admin order list kept current by push events. Commands
// never mutate the list; the change arrives through the push channel.
type LiveView struct {
	svc   *Service
	token string
	log   logrus.FieldLogger

	mu      sync.Mutex
	orders  []order.Order
	seq     *order.Sequencer
	closed  bool
	updates chan Board
	tick    *ticker.Loop

	unsubscribe func()
}

func newLiveView(svc *Service, token string, orders []order.Order) *LiveView {
	v := &LiveView{
		svc:     svc,
		token:   token,
		log:     svc.log.WithField("view", "orders"),
		orders:  orders,
		seq:     order.NewSequencer(),
		updates: make(chan Board, 1),
	}
	for i := range orders {
		if !orders[i].Status.IsTerminal() {
			v.seq.AcceptUpdate(orders[i].ID, orders[i].Version())
		}
	}
	v.tick = ticker.New(svc.interval, v.onTick)

	v.mu.Lock()
	v.syncTicker()
	v.mu.Unlock()
	return v
}

// Orders returns a copy of the current list, newest first
func (v *LiveView) Orders() []order.Order {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]order.Order, len(v.orders))
	copy(out, v.orders)
	return out
}

// Board returns the list with fresh projections
func (v *LiveView) Board() Board {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.board()
}

// Updates delivers a new Board after every change and every tick. Only the
// latest undelivered board is kept. The channel is closed by Close.
func (v *LiveView) Updates() <-chan Board {
	return v.updates
}

// Ticking reports whether the projection refresh is running
func (v *LiveView) Ticking() bool {
	return v.tick.Running()
}

// HandleEvent applies a push event to the list
func (v *LiveView) HandleEvent(evt order.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}

	switch evt.Name {
	case order.EventCreated:
		if evt.Order == nil || !v.seq.AcceptUpdate(evt.OrderID, evt.Version()) {
			return
		}
		if i := v.indexOf(evt.OrderID); i >= 0 {
			v.orders[i] = *evt.Order
		} else {
			v.orders = append([]order.Order{*evt.Order}, v.orders...)
		}

	case order.EventUpdated:
		i := v.indexOf(evt.OrderID)
		if i < 0 || evt.Order == nil {
			return
		}
		if !v.seq.AcceptUpdate(evt.OrderID, evt.Version()) {
			v.log.WithField("order_id", evt.OrderID).Debug("Discarding stale order event")
			return
		}
		if !order.CanTransition(v.orders[i].Status, evt.Order.Status) {
			v.log.WithFields(logrus.Fields{
				"order_id": evt.OrderID,
				"from":     v.orders[i].Status,
				"to":       evt.Order.Status,
			}).Warn("Ignoring invalid status transition")
			return
		}
		v.orders[i] = *evt.Order
		if evt.Order.Status.IsTerminal() {
			v.seq.Forget(evt.OrderID)
		}

	case order.EventDeleted:
		if !v.seq.AcceptDelete(evt.OrderID, evt.Version()) {
			return
		}
		if i := v.indexOf(evt.OrderID); i >= 0 {
			v.orders = append(v.orders[:i], v.orders[i+1:]...)
		}

	default:
		return
	}

	v.syncTicker()
	v.emit(v.board())
}

// SetStatus closes an order as done or canceled
func (v *LiveView) SetStatus(ctx context.Context, id string, status order.Status) error {
	if status != order.StatusDone && status != order.StatusCanceled {
		return ErrInvalidStatus
	}

	v.mu.Lock()
	i := v.indexOf(id)
	var current order.Status
	if i >= 0 {
		current = v.orders[i].Status
	}
	v.mu.Unlock()

	if i < 0 {
		return ErrOrderNotFound
	}
	if current.IsTerminal() {
		return ErrOrderClosed
	}

	if err := v.svc.api.SetOrderStatus(ctx, v.token, id, status); err != nil {
		return v.svc.translateOrder(err)
	}

	v.log.WithFields(logrus.Fields{"order_id": id, "status": status}).Info("Order status set")
	return nil
}

// Close stops following events and closes Updates
func (v *LiveView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.tick.Stop()
	close(v.updates)
	v.mu.Unlock()

	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

func (v *LiveView) onTick() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.emit(v.board())
}

// syncTicker runs the ticker while any listed order is being prepared.
// Caller holds mu.
func (v *LiveView) syncTicker() {
	if !v.closed {
		for i := range v.orders {
			if order.Ticking(&v.orders[i]) {
				v.tick.Start()
				return
			}
		}
	}
	v.tick.Stop()
}

// emit replaces any undelivered board with b. Caller holds mu.
func (v *LiveView) emit(b Board) {
	if v.closed {
		return
	}
	select {
	case v.updates <- b:
		return
	default:
	}

	select {
	case <-v.updates:
	default:
	}
	select {
	case v.updates <- b:
	default:
	}
}

// board builds the current Board. Caller holds mu.
func (v *LiveView) board() Board {
	now := v.svc.now()
	b := Board{Orders: make([]Entry, len(v.orders))}
	for i := range v.orders {
		b.Orders[i] = Entry{
			Order:      v.orders[i],
			Lines:      v.orders[i].Lines(),
			Projection: order.Project(&v.orders[i], now),
		}
	}
	return b
}

// indexOf finds an order in the list. Caller holds mu.
func (v *LiveView) indexOf(id string) int {
	for i := range v.orders {
		if v.orders[i].ID == id {
			return i
		}
	}
	return -1
}
