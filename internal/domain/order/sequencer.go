package order

import (
	"sync"
	"time"
)

// TombstoneTTL is how long a delete keeps rejecting late updates
const TombstoneTTL = 10 * time.Minute

// Version stamps one state of an order. Seq is the push channel's sequence,
// Stamp the order's updatedAt in nanoseconds; zero means not stamped. The two
// scales are unrelated and only ever compared with themselves.
type Version struct {
	Seq   int64
	Stamp int64
}

// newerThan reports whether v may replace last. A scale is compared only
// when both sides carry it; seq wins over stamps.
func (v Version) newerThan(last Version) bool {
	if v.Seq > 0 {
		return last.Seq == 0 || v.Seq > last.Seq
	}
	if v.Stamp > 0 && last.Stamp > 0 {
		return v.Stamp > last.Stamp
	}
	return true
}

// merge keeps the highest mark seen on each scale
func (v Version) merge(last Version) Version {
	if last.Seq > v.Seq {
		v.Seq = last.Seq
	}
	if last.Stamp > v.Stamp {
		v.Stamp = last.Stamp
	}
	return v
}

// Sequencer drops push events that are older than what was already applied
// for the same order. A delete leaves a tombstone so a late update cannot
// bring the order back; tombstones expire after TombstoneTTL.
type Sequencer struct {
	mu      sync.Mutex
	applied map[string]Version
	deleted map[string]time.Time
	now     func() time.Time
}

// NewSequencer creates an empty sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{
		applied: make(map[string]Version),
		deleted: make(map[string]time.Time),
		now:     time.Now,
	}
}

// AcceptUpdate reports whether an update (or creation) carrying version may
// be applied, and records it if so
func (s *Sequencer) AcceptUpdate(id string, version Version) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tombstoned(id) {
		return false
	}

	last := s.applied[id]
	if !version.newerThan(last) {
		return false
	}

	s.applied[id] = version.merge(last)
	return true
}

// AcceptDelete reports whether a delete carrying version may be applied and
// records the tombstone if so
func (s *Sequencer) AcceptDelete(id string, version Version) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	if _, gone := s.deleted[id]; gone {
		return false
	}
	if !version.newerThan(s.applied[id]) {
		return false
	}

	s.deleted[id] = s.now()
	delete(s.applied, id)
	return true
}

// Forget drops what is known about id. Callers use it once an order is
// closed, where the status machine already rejects anything but a no-op.
func (s *Sequencer) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.applied, id)
}

// size reports the tracked ids and live tombstones
func (s *Sequencer) size() (applied, tombstones int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied), len(s.deleted)
}

// tombstoned reports a live tombstone for id. Caller holds mu.
func (s *Sequencer) tombstoned(id string) bool {
	at, gone := s.deleted[id]
	if !gone {
		return false
	}
	if s.now().Sub(at) > TombstoneTTL {
		delete(s.deleted, id)
		return false
	}
	return true
}

// prune drops expired tombstones. Caller holds mu.
func (s *Sequencer) prune() {
	now := s.now()
	for id, at := range s.deleted {
		if now.Sub(at) > TombstoneTTL {
			delete(s.deleted, id)
		}
	}
}
