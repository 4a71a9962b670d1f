package state

import (
	"sync"
	"time"
)

type State string

const (
	Idle           State = "Idle"
	Authenticating State = "Authenticating"
	Listing        State = "Listing"
	Deduplicating  State = "Deduplicating"
	Processing     State = "Processing"
	Reporting      State = "Reporting"
)

// Tracker records which phase the sync engine is in. Writes come from
// the engine, reads from the HTTP status route while a run is in flight.
type Tracker struct {
	mu      sync.RWMutex
	current State
	since   time.Time
}

func NewTracker() *Tracker {
	return &Tracker{current: Idle, since: time.Now().UTC()}
}

func (t *Tracker) Set(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = s
	t.since = time.Now().UTC()
}

func (t *Tracker) Current() (State, time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.since
}
