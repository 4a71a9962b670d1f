package syncer

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies what happened to one source activity during a run.
type Outcome string

const (
	OutcomeUploaded           Outcome = "uploaded"
	OutcomeSkippedDuplicate   Outcome = "skipped-duplicate"
	OutcomeSkippedUnsupported Outcome = "skipped-unsupported-type"
	OutcomeFailedMaterialize  Outcome = "failed-materialize"
	OutcomeFailedConvert      Outcome = "failed-convert"
	OutcomeFailedUpload       Outcome = "failed-upload"
)

// ActivityResult is the per-activity line of a run report.
type ActivityResult struct {
	ActivityID    int64     `json:"activity_id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	StartDate     time.Time `json:"start_date"`
	Outcome       Outcome   `json:"outcome"`
	Detail        string    `json:"detail,omitempty"`
	DestinationID int64     `json:"destination_id,omitempty"`
}

// Report is the full account of one run. Counts always sum to the
// number of results, and an aborted run keeps every result it collected
// before the abort. Activities that were never attempted because of an
// abort do not appear at all.
type Report struct {
	RunID      string    `json:"run_id"`
	Days       int       `json:"days"`
	Since      time.Time `json:"since"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Aborted    bool      `json:"aborted"`
	AbortCause string    `json:"abort_cause,omitempty"`
	Listed     int       `json:"listed"`

	Counts  map[Outcome]int  `json:"counts"`
	Results []ActivityResult `json:"results"`

	// RotatedRefreshToken carries the replacement refresh token when the
	// source rotated it during this run. The operator has to persist it,
	// the configured token stops working once rotation happens.
	RotatedRefreshToken string `json:"rotated_refresh_token,omitempty"`
}

func newReport(days int, started time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Days:      days,
		Since:     started.Add(-time.Duration(days) * 24 * time.Hour),
		StartedAt: started,
		Counts:    map[Outcome]int{},
		Results:   []ActivityResult{},
	}
}

func (r *Report) add(result ActivityResult) {
	r.Results = append(r.Results, result)
	r.Counts[result.Outcome]++
}
