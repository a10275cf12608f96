package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
	"github.com/your-org/cafe-frontend/internal/pkg/logger"
)

type fakeSource struct {
	items      []Item
	categories []Category
	err        error
}

func (f *fakeSource) Menu(ctx context.Context) ([]Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeSource) Categories(ctx context.Context) ([]Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

var sampleMenu = []Item{
	{ID: "m1", Name: "Masala Chai", Price: decimal.NewFromInt(20), Category: "chai"},
	{ID: "m2", Name: "Cold Coffee", Price: decimal.NewFromInt(90), Category: "cold-coffee"},
	{ID: "m3", Name: "Ginger Chai", Price: decimal.NewFromInt(25), Category: "chai"},
}

func TestFilter(t *testing.T) {
	assert.Len(t, Filter(sampleMenu, AllCategory), 3)
	assert.Len(t, Filter(sampleMenu, ""), 3)

	chai := Filter(sampleMenu, "chai")
	require.Len(t, chai, 2)
	assert.Equal(t, "m1", chai[0].ID)
	assert.Equal(t, "m3", chai[1].ID)

	assert.Empty(t, Filter(sampleMenu, "pizza"))
}

func TestMenuFallsBackToCachedCopy(t *testing.T) {
	source := &fakeSource{items: sampleMenu}
	store := snapshot.NewMemoryStore(0)
	svc := NewService(source, store, logger.Discard())
	ctx := context.Background()

	listing, err := svc.Menu(ctx)
	require.NoError(t, err)
	assert.False(t, listing.Stale)

	source.err = errors.New("connection refused")

	listing, err = svc.Menu(ctx)
	require.NoError(t, err)
	assert.True(t, listing.Stale)
	assert.Len(t, listing.Items, 3)
}

func TestMenuUnavailableWithoutCache(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("boom")}, snapshot.NewMemoryStore(0), logger.Discard())

	_, err := svc.Menu(context.Background())
	assert.ErrorIs(t, err, ErrMenuUnavailable)
}

func TestMenuIgnoresCorruptCache(t *testing.T) {
	store := snapshot.NewMemoryStore(0)
	require.NoError(t, store.Put(context.Background(), snapshot.MenuKey, []byte("<html>")))
	svc := NewService(&fakeSource{err: errors.New("boom")}, store, logger.Discard())

	_, err := svc.Menu(context.Background())
	assert.ErrorIs(t, err, ErrMenuUnavailable)
}

func TestCategoriesFallback(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("404")}, snapshot.NewMemoryStore(0), logger.Discard())
	assert.Equal(t, StaticCategories, svc.Categories(context.Background()))

	svc = NewService(&fakeSource{categories: []Category{{ID: "pizza", Name: "Pizza"}}}, snapshot.NewMemoryStore(0), logger.Discard())
	categories := svc.Categories(context.Background())
	require.Len(t, categories, 2)
	assert.Equal(t, AllCategory, categories[0].ID)
}

func TestItemLookup(t *testing.T) {
	svc := NewService(&fakeSource{items: sampleMenu}, snapshot.NewMemoryStore(0), logger.Discard())

	item, err := svc.Item(context.Background(), "m2")
	require.NoError(t, err)
	assert.Equal(t, "Cold Coffee", item.Name)

	_, err = svc.Item(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
