package garmin

import "time"

// Activity is a destination listing entry. It shares no identifier with
// the source; matching happens on fingerprints only.
type Activity struct {
	ActivityID   int64        `json:"activityId"`
	ActivityName string       `json:"activityName"`
	StartTimeGMT string       `json:"startTimeGMT"`
	Duration     float64      `json:"duration"`
	ActivityType ActivityType `json:"activityType"`
}

type ActivityType struct {
	TypeKey string `json:"typeKey"`
}

const startTimeLayout = "2006-01-02 15:04:05"

// StartTime parses the GMT timestamp of the listing entry.
func (a Activity) StartTime() (time.Time, error) {
	return time.ParseInLocation(startTimeLayout, a.StartTimeGMT, time.UTC)
}

func (a Activity) Elapsed() time.Duration {
	return time.Duration(a.Duration * float64(time.Second))
}

// importResponse is the upload service envelope.
type importResponse struct {
	DetailedImportResult importResult `json:"detailedImportResult"`
}

type importResult struct {
	UploadID  int64           `json:"uploadId"`
	Successes []importSuccess `json:"successes"`
	Failures  []importFailure `json:"failures"`
}

type importSuccess struct {
	InternalID int64  `json:"internalId"`
	ExternalID string `json:"externalId"`
}

type importFailure struct {
	ExternalID string          `json:"externalId"`
	Messages   []importMessage `json:"messages"`
}

type importMessage struct {
	Code    int    `json:"code"`
	Content string `json:"content"`
}

// UploadResult reports the activity the destination created for an
// accepted document.
type UploadResult struct {
	ActivityID int64
}
