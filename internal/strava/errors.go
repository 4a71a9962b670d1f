package strava

import (
	"fmt"
	"time"
)

const (
	// the stored refresh token was revoked or is malformed, a human has
	// to re-authorize the application
	AuthReasonInvalidGrant = "invalid_grant"
	// the token endpoint could not be reached or answered with a server
	// error, a later run may succeed
	AuthReasonTransient = "transient"
)

// AuthError reports a failed credential refresh.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credential refresh failed (%s): %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Fatal is true when retrying cannot help.
func (e *AuthError) Fatal() bool { return e.Reason == AuthReasonInvalidGrant }

// RateLimitError reports that the source kept refusing a page even after
// the mandated wait was honored once.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter.Round(time.Second), e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

const (
	// the activity has no usable sample data
	MaterializeReasonEmpty = "empty"
	// the sample data could not be fetched
	MaterializeReasonUnavailable = "unavailable"
)

// MaterializeError reports an activity whose sample data cannot back a
// document upload. It fails that activity only, never the run.
type MaterializeError struct {
	ActivityID int64
	Reason     string
	Err        error
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("materializing activity %d (%s): %v", e.ActivityID, e.Reason, e.Err)
}

func (e *MaterializeError) Unwrap() error { return e.Err }
