package strava

import (
	"context"
	"errors"

	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
)

// MaterializedActivity couples an activity with its sample data. It
// lives only for the duration of one conversion and upload and is never
// cached between runs.
type MaterializedActivity struct {
	Activity sdk.Activity
	Streams  *sdk.StreamSet
}

// Materializer fetches the per-sample series backing one activity.
type Materializer struct {
	sdk sdk.StravaSDK
}

func NewMaterializer(stravaSDK sdk.StravaSDK) *Materializer {
	return &Materializer{sdk: stravaSDK}
}

func (m *Materializer) Materialize(ctx context.Context, token string, activity sdk.Activity) (*MaterializedActivity, error) {
	streams, err := m.sdk.GetActivityStreams(ctx, token, activity.ID)
	if errors.Is(err, sdk.ErrorNotFound) {
		return nil, &MaterializeError{ActivityID: activity.ID, Reason: MaterializeReasonEmpty, Err: err}
	}
	if err != nil {
		return nil, &MaterializeError{ActivityID: activity.ID, Reason: MaterializeReasonUnavailable, Err: err}
	}

	// every other series aligns to the time axis, without it no
	// trackpoint can be placed
	if streams.Len() == 0 {
		return nil, &MaterializeError{ActivityID: activity.ID, Reason: MaterializeReasonEmpty, Err: errors.New("no time series")}
	}

	return &MaterializedActivity{Activity: activity, Streams: streams}, nil
}
