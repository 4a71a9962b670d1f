package garmin

import "fmt"

// AuthError reports a failed destination login. The run aborts before
// touching any activity when this happens.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("destination login failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

const (
	// the destination inspected the document and refused it, sending it
	// again can only produce the same answer
	UploadReasonRejected = "rejected"
	// the upload or its status could not be confirmed, a later run will
	// try again
	UploadReasonTransient = "transient"
)

// UploadError reports a document the destination refused or an upload
// whose outcome could not be confirmed.
type UploadError struct {
	Reason  string
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upload %s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("upload %s: %v", e.Reason, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Retriable is true when a later run may succeed.
func (e *UploadError) Retriable() bool { return e.Reason == UploadReasonTransient }
