// internal/domain/cart/service.go
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
)

// ItemLookup resolves menu items by id
type ItemLookup interface {
	Item(ctx context.Context, id string) (menu.Item, error)
}

// Service hands out one Store per browser session, so the in-memory cart
// lives as long as the session keeps using it
type Service struct {
	mu        sync.Mutex
	stores    map[string]*entry
	snapshots snapshot.Store
	items     ItemLookup
	log       logrus.FieldLogger
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

// NewService creates a new cart service. Stores idle for longer than idleTTL
// are dropped from memory; their snapshots stay.
func NewService(snapshots snapshot.Store, items ItemLookup, idleTTL time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		stores:    make(map[string]*entry),
		snapshots: snapshots,
		items:     items,
		log:       log,
		idleTTL:   idleTTL,
		now:       time.Now,
	}
}

// Cart returns the cart of a browser session
func (s *Service) Cart(sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	e, ok := s.stores[sessionID]
	if !ok {
		e = &entry{store: NewStore(sessionID, s.snapshots, s.log)}
		s.stores[sessionID] = e
	}
	e.lastUsed = now
	return e.store
}

// AddItem looks the item up on the menu and adds it to the session's cart
func (s *Service) AddItem(ctx context.Context, sessionID, itemID string) (*Store, error) {
	item, err := s.items.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}

	store := s.Cart(sessionID)
	if err := store.Add(ctx, item); err != nil {
		return nil, err
	}
	return store, nil
}

// active returns the number of carts held in memory
func (s *Service) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

func (s *Service) sweep(now time.Time) {
	if s.idleTTL <= 0 || now.Sub(s.lastSweep) < s.idleTTL {
		return
	}
	s.lastSweep = now

	for id, e := range s.stores {
		if now.Sub(e.lastUsed) > s.idleTTL {
			delete(s.stores, id)
		}
	}
}
