// internal/domain/menu/service.go
package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
)

var (
	// ErrMenuUnavailable is returned when neither the API nor a cached copy
	// can provide the menu
	ErrMenuUnavailable = errors.New("failed to load menu")
	ErrItemNotFound    = errors.New("menu item not found")
)

// Source fetches menu data from the café API
type Source interface {
	Menu(ctx context.Context) ([]Item, error)
	Categories(ctx context.Context) ([]Category, error)
}

// Service handles menu browsing
type Service struct {
	source    Source
	snapshots snapshot.Store
	log       logrus.FieldLogger
}

// NewService creates a new menu service
func NewService(source Source, snapshots snapshot.Store, log logrus.FieldLogger) *Service {
	return &Service{
		source:    source,
		snapshots: snapshots,
		log:       log,
	}
}

// Listing is a menu response
type Listing struct {
	Items []Item `json:"items"`
	// Stale is set when the API failed and the cached menu was served
	Stale bool `json:"stale"`
}

// Menu fetches the menu, remembering the last good copy for when the API is
// unreachable
func (s *Service) Menu(ctx context.Context) (*Listing, error) {
	items, err := s.source.Menu(ctx)
	if err == nil {
		if err := snapshot.PutJSON(ctx, s.snapshots, snapshot.MenuKey, items); err != nil {
			s.log.WithError(err).Warn("Failed to cache menu")
		}
		return &Listing{Items: items}, nil
	}

	s.log.WithError(err).Warn("Menu fetch failed, trying cached copy")

	var cached []Item
	if cacheErr := snapshot.GetJSON(ctx, s.snapshots, snapshot.MenuKey, &cached); cacheErr != nil {
		if errors.Is(cacheErr, snapshot.ErrCorrupt) {
			s.log.WithError(cacheErr).Warn("Discarding corrupt menu snapshot")
		}
		return nil, fmt.Errorf("%w: %v", ErrMenuUnavailable, err)
	}

	return &Listing{Items: cached, Stale: true}, nil
}

// Categories lists categories, falling back to the static list
func (s *Service) Categories(ctx context.Context) []Category {
	categories, err := s.source.Categories(ctx)
	if err != nil || len(categories) == 0 {
		if err != nil {
			s.log.WithError(err).Debug("Category fetch failed, using static list")
		}
		return StaticCategories
	}

	// Keep the "all" pseudo category first
	for _, c := range categories {
		if c.ID == AllCategory {
			return categories
		}
	}
	return append([]Category{StaticCategories[0]}, categories...)
}

// Item looks an item up in the current menu
func (s *Service) Item(ctx context.Context, id string) (Item, error) {
	listing, err := s.Menu(ctx)
	if err != nil {
		return Item{}, err
	}

	item, ok := Find(listing.Items, id)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}
