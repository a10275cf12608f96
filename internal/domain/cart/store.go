// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
)

// ErrLineNotFound is returned when changing the quantity of an item that is
// not in the cart
var ErrLineNotFound = errors.New("item not found in cart")

// Store holds the in-progress order of one browser session and mirrors it to
// the durable snapshot store on every mutation
type Store struct {
	mu        sync.Mutex
	key       string
	lines     []Line
	loaded    bool
	snapshots snapshot.Store
	log       logrus.FieldLogger
}

// NewStore creates the cart of a browser session
func NewStore(sessionID string, snapshots snapshot.Store, log logrus.FieldLogger) *Store {
	return &Store{
		key:       snapshot.CartKey(sessionID),
		snapshots: snapshots,
		log:       log.WithField("cart", sessionID),
	}
}

// Lines returns a copy of the cart lines in insertion order
func (s *Store) Lines(ctx context.Context) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.copyLines(), nil
}

// Add puts one more of item into the cart
func (s *Store) Add(ctx context.Context, item menu.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	prev := s.copyLines()
	if i := s.indexOf(item.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, lineFromItem(item))
	}
	return s.commit(ctx, prev)
}

// SetQuantity sets the quantity of an item; n <= 0 removes it
func (s *Store) SetQuantity(ctx context.Context, itemID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	i := s.indexOf(itemID)
	if n <= 0 {
		if i < 0 {
			return nil
		}
		prev := s.copyLines()
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		return s.commit(ctx, prev)
	}

	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, itemID)
	}
	prev := s.copyLines()
	s.lines[i].Quantity = n
	return s.commit(ctx, prev)
}

// Remove drops an item from the cart; removing an absent item is a no-op
func (s *Store) Remove(ctx context.Context, itemID string) error {
	return s.SetQuantity(ctx, itemID, 0)
}

// Clear empties the cart and erases its snapshot
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.snapshots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to erase cart snapshot: %w", err)
	}
	s.lines = nil
	// A cleared cart must never be refilled from an older snapshot
	s.loaded = true
	return nil
}

// Total is the sum of price × quantity over all lines
func (s *Store) Total(ctx context.Context) (decimal.Decimal, error) {
	totals, err := s.Totals(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return totals.Total, nil
}

// Totals returns item count, quantity and amount totals
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Totals{}, err
	}
	return calculateTotals(s.lines), nil
}

// ensureLoaded pulls the snapshot in once, and only into an empty cart
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if len(s.lines) > 0 {
		s.loaded = true
		return nil
	}

	var lines []Line
	err := snapshot.GetJSON(ctx, s.snapshots, s.key, &lines)
	switch {
	case err == nil:
		s.lines = sanitize(lines)
	case errors.Is(err, snapshot.ErrNotFound):
	case errors.Is(err, snapshot.ErrCorrupt):
		s.log.WithError(err).Warn("Ignoring corrupt cart snapshot")
	default:
		return fmt.Errorf("failed to load cart: %w", err)
	}

	s.loaded = true
	return nil
}

// commit persists the mutated lines, restoring prev when the snapshot store
// rejects the write so memory and snapshot stay equal
func (s *Store) commit(ctx context.Context, prev []Line) error {
	if err := s.persist(ctx); err != nil {
		s.lines = prev
		return err
	}
	return nil
}

// persist overwrites the snapshot with the current lines; an empty cart has
// no snapshot
func (s *Store) persist(ctx context.Context) error {
	if len(s.lines) == 0 {
		if err := s.snapshots.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("failed to erase cart snapshot: %w", err)
		}
		return nil
	}

	if err := snapshot.PutJSON(ctx, s.snapshots, s.key, s.lines); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *Store) indexOf(itemID string) int {
	for i := range s.lines {
		if s.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// sanitize restores the cart invariants on loaded data: no empty ids, no
// quantities below one, one line per item
func sanitize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	seen := make(map[string]int, len(lines))

	for _, line := range lines {
		if line.ItemID == "" || line.Quantity <= 0 {
			continue
		}
		if i, ok := seen[line.ItemID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		seen[line.ItemID] = len(out)
		out = append(out, line)
	}
	return out
}
