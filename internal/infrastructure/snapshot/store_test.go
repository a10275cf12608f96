package snapshot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, CartKey("s1"), []byte(`[1]`)))
	require.NoError(t, s.Put(ctx, CartKey("s1"), []byte(`[1,2]`)))

	data, err := s.Get(ctx, CartKey("s1"))
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))

	require.NoError(t, s.Delete(ctx, CartKey("s1")))
	require.NoError(t, s.Delete(ctx, CartKey("s1")))

	_, err = s.Get(ctx, CartKey("s1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore(0))
}

func TestMemoryStoreExpires(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	require.NoError(t, s.Put(context.Background(), "k", []byte("v")))

	time.Sleep(5 * time.Millisecond)

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedisStore(client, time.Hour)
	runStoreContract(t, s)

	require.NoError(t, s.Put(context.Background(), OrderKey("o1"), []byte(`{}`)))
	assert.Equal(t, time.Hour, mr.TTL(OrderKey("o1")))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}))
	return db
}

func TestGormStore(t *testing.T) {
	runStoreContract(t, NewGormStore(newTestDB(t), time.Hour))
}

func TestGormStorePurgesExpired(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, db.Create(&Record{Key: "old", Value: "v", ExpiresAt: &past}).Error)

	fresh := NewGormStore(db, time.Hour)
	_, err := fresh.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fresh.Put(ctx, "new", []byte("v")))

	removed, err := fresh.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	data, err := fresh.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "v", string(data))
}

func TestGetJSONReportsCorruptSnapshots(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "bad", []byte("{not json")))

	var dest map[string]int
	err := GetJSON(ctx, s, "bad", &dest)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, PutJSON(ctx, s, "good", map[string]int{"a": 1}))
	require.NoError(t, GetJSON(ctx, s, "good", &dest))
	assert.Equal(t, 1, dest["a"])
}
