package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerStartsIdle(t *testing.T) {
	tracker := NewTracker()

	current, since := tracker.Current()
	require.Equal(t, Idle, current)
	require.False(t, since.IsZero())
}

func TestTrackerSetMovesPhaseForward(t *testing.T) {
	tracker := NewTracker()
	_, before := tracker.Current()

	tracker.Set(Listing)

	current, since := tracker.Current()
	require.Equal(t, Listing, current)
	require.False(t, since.Before(before))
}
