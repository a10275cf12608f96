package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/infrastructure/snapshot"
	"github.com/your-org/cafe-frontend/internal/pkg/logger"
)

func item(id string, price string) menu.Item {
	return menu.Item{
		ID:       id,
		Name:     "Item " + id,
		Price:    decimal.RequireFromString(price),
		Category: "chai",
	}
}

func newTestStore(t *testing.T, snaps snapshot.Store) *Store {
	t.Helper()
	return NewStore("session-1", snaps, logger.Discard())
}

func TestAddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, snapshot.NewMemoryStore(0))

	require.NoError(t, s.Add(ctx, item("a", "20")))
	require.NoError(t, s.Add(ctx, item("b", "35.50")))
	require.NoError(t, s.Add(ctx, item("a", "20")))

	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "b", lines[1].ItemID)
	assert.Equal(t, 1, lines[1].Quantity)

	total, err := s.Total(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("75.50").Equal(total), total.String())
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemoryStore(0)
	s := newTestStore(t, snaps)

	require.NoError(t, s.Add(ctx, item("a", "10")))
	require.NoError(t, s.SetQuantity(ctx, "a", 4))

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, totals.TotalQuantity)

	require.NoError(t, s.SetQuantity(ctx, "a", 0))
	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// An emptied cart has no snapshot
	_, err = snaps.Get(ctx, snapshot.CartKey("session-1"))
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestSetQuantityOnMissingLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, snapshot.NewMemoryStore(0))

	assert.ErrorIs(t, s.SetQuantity(ctx, "ghost", 3), ErrLineNotFound)
	assert.NoError(t, s.SetQuantity(ctx, "ghost", -1))
	assert.NoError(t, s.Remove(ctx, "ghost"))
	assert.NoError(t, s.Remove(ctx, "ghost"))
}

func TestClearErasesSnapshotAndDoesNotResurrect(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemoryStore(0)
	s := newTestStore(t, snaps)

	require.NoError(t, s.Add(ctx, item("a", "10")))
	require.NoError(t, s.Add(ctx, item("b", "12")))
	require.NoError(t, s.Clear(ctx))

	_, err := snaps.Get(ctx, snapshot.CartKey("session-1"))
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	fresh := newTestStore(t, snaps)
	lines, err = fresh.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSnapshotReloadedIntoFreshStore(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemoryStore(0)

	first := newTestStore(t, snaps)
	require.NoError(t, first.Add(ctx, item("a", "10")))
	require.NoError(t, first.Add(ctx, item("a", "10")))

	second := newTestStore(t, snaps)
	lines, err := second.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestSnapshotLoadedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemoryStore(0)
	s := newTestStore(t, snaps)

	require.NoError(t, s.Add(ctx, item("a", "10")))

	// Another writer replaces the snapshot; the live cart keeps its own state
	require.NoError(t, snapshot.PutJSON(ctx, snaps, snapshot.CartKey("session-1"), []Line{
		{ItemID: "z", Name: "stale", Price: decimal.NewFromInt(1), Quantity: 9},
	}))

	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].ItemID)
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemoryStore(0)
	require.NoError(t, snaps.Put(ctx, snapshot.CartKey("session-1"), []byte("not-json{")))

	s := newTestStore(t, snaps)
	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, s.Add(ctx, item("a", "10")))
	lines, err = s.Lines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestLoadedSnapshotIsSanitized(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemoryStore(0)
	require.NoError(t, snapshot.PutJSON(ctx, snaps, snapshot.CartKey("session-1"), []Line{
		{ItemID: "a", Quantity: 1, Price: decimal.NewFromInt(5)},
		{ItemID: "b", Quantity: 0, Price: decimal.NewFromInt(5)},
		{ItemID: "a", Quantity: 2, Price: decimal.NewFromInt(5)},
		{ItemID: "", Quantity: 1},
	}))

	lines, err := newTestStore(t, snaps).Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

type failingStore struct {
	snapshot.Store
	err error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, f.err
}

func TestUnavailableSnapshotStoreIsReported(t *testing.T) {
	s := newTestStore(t, &failingStore{Store: snapshot.NewMemoryStore(0), err: errors.New("redis down")})

	_, err := s.Lines(context.Background())
	assert.ErrorContains(t, err, "redis down")
}

type rejectingWrites struct {
	snapshot.Store
	fail bool
}

func (r *rejectingWrites) Put(ctx context.Context, key string, value []byte) error {
	if r.fail {
		return errors.New("disk full")
	}
	return r.Store.Put(ctx, key, value)
}

func (r *rejectingWrites) Delete(ctx context.Context, key string) error {
	if r.fail {
		return errors.New("disk full")
	}
	return r.Store.Delete(ctx, key)
}

func TestFailedWriteLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	snaps := &rejectingWrites{Store: snapshot.NewMemoryStore(0)}
	s := newTestStore(t, snaps)

	require.NoError(t, s.Add(ctx, item("a", "4.50")))
	snaps.fail = true

	assert.ErrorContains(t, s.Add(ctx, item("a", "4.50")), "disk full")
	assert.ErrorContains(t, s.Add(ctx, item("b", "1")), "disk full")
	assert.ErrorContains(t, s.SetQuantity(ctx, "a", 5), "disk full")
	assert.ErrorContains(t, s.Remove(ctx, "a"), "disk full")
	assert.ErrorContains(t, s.Clear(ctx), "disk full")

	lines, err := s.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, 1, lines[0].Quantity)

	var stored []Line
	require.NoError(t, snapshot.GetJSON(ctx, snaps, snapshot.CartKey("session-1"), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "a", stored[0].ItemID)
	assert.Equal(t, 1, stored[0].Quantity)
}

// Random add/setQuantity/remove sequences never break the cart invariants,
// and the snapshot always mirrors memory.
func TestCartInvariantsUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	catalog := []menu.Item{
		item("a", "10"), item("b", "2.25"), item("c", "99.99"), item("d", "0.5"), item("e", "15"),
	}

	for run := 0; run < 50; run++ {
		snaps := snapshot.NewMemoryStore(0)
		s := NewStore(fmt.Sprintf("run-%d", run), snaps, logger.Discard())

		for step := 0; step < 200; step++ {
			target := catalog[rng.Intn(len(catalog))]
			switch rng.Intn(3) {
			case 0:
				require.NoError(t, s.Add(ctx, target))
			case 1:
				err := s.SetQuantity(ctx, target.ID, rng.Intn(7)-2)
				if err != nil {
					require.ErrorIs(t, err, ErrLineNotFound)
				}
			case 2:
				require.NoError(t, s.Remove(ctx, target.ID))
			}

			lines, err := s.Lines(ctx)
			require.NoError(t, err)

			seen := map[string]bool{}
			expected := decimal.Zero
			for _, line := range lines {
				require.Greater(t, line.Quantity, 0)
				require.False(t, seen[line.ItemID], "duplicate line %s", line.ItemID)
				seen[line.ItemID] = true
				expected = expected.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}

			total, err := s.Total(ctx)
			require.NoError(t, err)
			require.True(t, expected.Equal(total))

			var stored []Line
			err = snapshot.GetJSON(ctx, snaps, snapshot.CartKey(fmt.Sprintf("run-%d", run)), &stored)
			if len(lines) == 0 {
				require.ErrorIs(t, err, snapshot.ErrNotFound)
			} else {
				require.NoError(t, err)
				require.Len(t, stored, len(lines))
			}
		}
	}
}

func TestServiceReusesStoresPerSession(t *testing.T) {
	svc := NewService(snapshot.NewMemoryStore(0), nil, time.Hour, logger.Discard())

	assert.Same(t, svc.Cart("s1"), svc.Cart("s1"))
	assert.NotSame(t, svc.Cart("s1"), svc.Cart("s2"))
	assert.Equal(t, 2, svc.active())
}

func TestServiceDropsIdleStores(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemoryStore(0)
	svc := NewService(snaps, nil, time.Minute, logger.Discard())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Cart("s1").Add(ctx, item("a", "10")))

	now = now.Add(2 * time.Minute)
	svc.Cart("s2")
	assert.Equal(t, 1, svc.active())

	// The evicted cart comes back from its snapshot
	lines, err := svc.Cart("s1").Lines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

type lookup map[string]menu.Item

func (l lookup) Item(ctx context.Context, id string) (menu.Item, error) {
	if it, ok := l[id]; ok {
		return it, nil
	}
	return menu.Item{}, menu.ErrItemNotFound
}

func TestServiceAddItemUsesMenu(t *testing.T) {
	ctx := context.Background()
	svc := NewService(snapshot.NewMemoryStore(0), lookup{"a": item("a", "10")}, time.Hour, logger.Discard())

	store, err := svc.AddItem(ctx, "s1", "a")
	require.NoError(t, err)
	lines, err := store.Lines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	_, err = svc.AddItem(ctx, "s1", "zzz")
	assert.ErrorIs(t, err, menu.ErrItemNotFound)
}
