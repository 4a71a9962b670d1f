package tcx

import "fmt"

const (
	// the activity type has no entry in the sport table, uploading it
	// would file it under the wrong sport
	ConversionReasonUnsupportedType = "unsupported_type"
	// the activity is missing the data a document needs
	ConversionReasonMalformed = "malformed"
)

// ConversionError reports an activity that cannot be rendered as a
// document. It fails that activity only, never the run.
type ConversionError struct {
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("tcx conversion failed (%s): %v", e.Reason, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
