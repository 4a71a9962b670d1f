package sdk

import (
	"sync"
	"time"
)

// rateLimitState remembers the point in time until which the API has
// told us to stay away. It is shared by the client middlewares so that
// concurrent requests observe the same suspension.
type rateLimitState struct {
	mu           sync.Mutex
	limitedUntil time.Time
}

func newRateLimitState() *rateLimitState {
	return &rateLimitState{}
}

func (s *rateLimitState) LimitUntil(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.limitedUntil) {
		s.limitedUntil = t
	}
}

func (s *rateLimitState) LimitedUntil() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limitedUntil
}
