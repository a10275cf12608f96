// Package ticker runs a callback on a fixed interval that can be started and
// stopped repeatedly.
package ticker

import (
	"sync"
	"time"
)

// Loop calls fn every interval while running. fn runs on the loop's own
// goroutine; Stop does not wait for an in-progress call.
type Loop struct {
	interval time.Duration
	fn       func()

	mu   sync.Mutex
	stop chan struct{}
}

// New creates a stopped loop
func New(interval time.Duration, fn func()) *Loop {
	return &Loop{interval: interval, fn: fn}
}

// Start begins ticking. Calling Start on a running loop does nothing.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stop != nil || l.interval <= 0 {
		return
	}
	l.stop = make(chan struct{})
	go l.run(l.stop)
}

// Stop halts ticking. Calling Stop on a stopped loop does nothing.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
}

// Running reports whether the loop is ticking
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stop != nil
}

func (l *Loop) run(stop <-chan struct{}) {
	t := time.NewTicker(l.interval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			select {
			case <-stop:
				return
			default:
			}
			l.fn()
		}
	}
}
