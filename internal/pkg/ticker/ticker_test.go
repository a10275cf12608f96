package ticker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopStartStop(t *testing.T) {
	var calls atomic.Int32
	l := New(5*time.Millisecond, func() { calls.Add(1) })

	assert.False(t, l.Running())
	l.Start()
	l.Start()
	assert.True(t, l.Running())

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	l.Stop()
	l.Stop()
	assert.False(t, l.Running())

	// Allow an in-progress tick to finish, then expect silence
	time.Sleep(20 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, calls.Load())

	l.Start()
	require.Eventually(t, func() bool { return calls.Load() > settled }, time.Second, time.Millisecond)
	l.Stop()
}

func TestZeroIntervalNeverTicks(t *testing.T) {
	l := New(0, func() { t.Fatal("unexpected tick") })
	l.Start()
	assert.False(t, l.Running())
}
