package locks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithLockRunsFunction(t *testing.T) {
	lock := NewRunLock()
	ran := false

	acquired, err := lock.WithLock(context.Background(), func() error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	require.True(t, acquired)
	require.True(t, ran)
}

func TestWithLockPropagatesError(t *testing.T) {
	lock := NewRunLock()
	boom := errors.New("boom")

	acquired, err := lock.WithLock(context.Background(), func() error { return boom })

	require.True(t, acquired)
	require.ErrorIs(t, err, boom)
}

func TestWithLockRefusesWhileHeld(t *testing.T) {
	lock := NewRunLock()
	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = lock.WithLock(context.Background(), func() error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	acquired, err := lock.WithLock(context.Background(), func() error { return nil })
	require.NoError(t, err)
	require.False(t, acquired)

	close(release)
	<-done

	// released locks can be taken again
	acquired, err = lock.WithLock(context.Background(), func() error { return nil })
	require.NoError(t, err)
	require.True(t, acquired)
}
