// Package countdown holds the state shared between the fetch loop and the
// render loop, and the arithmetic that turns it into a live clock.
package countdown

import (
	"sync/atomic"
	"time"
)

// Snapshot is an immutable pair of seconds remaining and the instant they were
// computed. A snapshot without a departure means no upcoming departure is known.
type Snapshot struct {
	remaining    int
	hasDeparture bool
	Anchor       time.Time
}

// Remaining returns the published seconds remaining and whether a departure is known
func (s Snapshot) Remaining() (int, bool) {
	return s.remaining, s.hasDeparture
}

// Store is the only mutable state shared between loops. One goroutine publishes,
// any number may read; readers never observe a half-written snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store with no known departure anchored at start
func NewStore(start time.Time) *Store {
	s := &Store{}
	s.current.Store(&Snapshot{Anchor: start})
	return s
}

// Publish replaces the snapshot with a known departure. Negative values are clamped to zero.
func (s *Store) Publish(remaining int, anchor time.Time) {
	if remaining < 0 {
		remaining = 0
	}
	s.current.Store(&Snapshot{remaining: remaining, hasDeparture: true, Anchor: anchor})
}

// PublishAbsent records that no matching departure is currently known
func (s *Store) PublishAbsent(anchor time.Time) {
	s.current.Store(&Snapshot{Anchor: anchor})
}

// Read returns the latest snapshot
func (s *Store) Read() Snapshot {
	return *s.current.Load()
}
