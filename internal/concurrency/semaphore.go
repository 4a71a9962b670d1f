package concurrency

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

type empty struct{}

var emptySingleton = empty{}

// Semaphore Enables semaphore operations
type Semaphore struct {
	resources int
	ch        chan empty
}

// NewSemaphore creates a new semaphore with a specific resource count
func NewSemaphore(resources int) Semaphore {
	return Semaphore{resources, make(chan empty, resources)}
}

// Acquire acquires n resources
func (s Semaphore) Acquire(n int) {
	for i := 0; i < n; i++ {
		s.ch <- emptySingleton
	}
}

// Release releases n resources
func (s Semaphore) Release(n int) {
	for i := 0; i < n; i++ {
		<-s.ch
	}
}

// WithRateLimit runs each function while holding one semaphore resource,
// so at most `resources` functions execute at once. Functions that have
// not yet started when ctx is canceled do not run and surface the
// context error instead. With stopOnError false, all errors are
// collected and returned together after every function has finished.
func (s Semaphore) WithRateLimit(ctx context.Context, funcs []func() error, stopOnError bool) error {
	if len(funcs) == 0 {
		return nil
	}

	errChan := make(chan error, len(funcs))
	doneChan := make(chan empty, len(funcs))

	for i := 0; i < len(funcs); i++ {
		go func(f func() error) {
			s.Acquire(1)
			defer s.Release(1)

			if err := ctx.Err(); err != nil {
				errChan <- err
				return
			}

			err := f()
			if err != nil {
				errChan <- err
				return
			}

			doneChan <- emptySingleton
		}(funcs[i])
	}

	totalDone := 0
	var result *multierror.Error
	for {
		select {
		case err := <-errChan:
			if stopOnError {
				return err
			}

			result = multierror.Append(result, err)
			totalDone++
			if totalDone == len(funcs) {
				return result.ErrorOrNil()
			}
		case <-doneChan:
			totalDone++
			if totalDone == len(funcs) {
				return result.ErrorOrNil()
			}
		}
	}
}
