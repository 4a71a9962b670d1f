package strava

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
)

func TestMaterializeReturnsActivityWithStreams(t *testing.T) {
	stub := &stubSDK{streams: &sdk.StreamSet{
		Time:      &sdk.Stream{Data: []float64{0, 1, 2}},
		Heartrate: &sdk.Stream{Data: []float64{120, 121, 122}},
	}}
	materializer := NewMaterializer(stub)

	activity := sdk.Activity{ID: 42, Type: "Run", StartDate: time.Now().UTC(), ElapsedTime: 600}
	materialized, err := materializer.Materialize(context.Background(), "token", activity)

	require.NoError(t, err)
	require.Equal(t, activity, materialized.Activity)
	require.Equal(t, 3, materialized.Streams.Len())
}

func TestMaterializeMissingStreamsIsEmpty(t *testing.T) {
	stub := &stubSDK{streamsErr: sdk.ErrorNotFound}
	materializer := NewMaterializer(stub)

	_, err := materializer.Materialize(context.Background(), "token", sdk.Activity{ID: 42})

	var matErr *MaterializeError
	require.ErrorAs(t, err, &matErr)
	require.Equal(t, MaterializeReasonEmpty, matErr.Reason)
	require.Equal(t, int64(42), matErr.ActivityID)
}

func TestMaterializeNoTimeAxisIsEmpty(t *testing.T) {
	stub := &stubSDK{streams: &sdk.StreamSet{
		Heartrate: &sdk.Stream{Data: []float64{120, 121}},
	}}
	materializer := NewMaterializer(stub)

	_, err := materializer.Materialize(context.Background(), "token", sdk.Activity{ID: 42})

	var matErr *MaterializeError
	require.ErrorAs(t, err, &matErr)
	require.Equal(t, MaterializeReasonEmpty, matErr.Reason)
}

func TestMaterializeFetchFailureIsUnavailable(t *testing.T) {
	stub := &stubSDK{streamsErr: errors.New("connection reset")}
	materializer := NewMaterializer(stub)

	_, err := materializer.Materialize(context.Background(), "token", sdk.Activity{ID: 42})

	var matErr *MaterializeError
	require.ErrorAs(t, err, &matErr)
	require.Equal(t, MaterializeReasonUnavailable, matErr.Reason)
}
