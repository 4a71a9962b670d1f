package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSDK(t *testing.T, handler http.Handler) StravaSDK {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewStravaSDK(StravaSDKConfig{
		BaseURL:      server.URL + "/",
		Timeout:      2 * time.Second,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
}

func TestRefreshAuthTokenPostsFormAndParsesTokens(t *testing.T) {
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client-id", r.PostForm.Get("client_id"))
		require.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh-access","expires_at":1715508000,"refresh_token":"new-refresh"}`))
	}))

	tokens, err := sdk.RefreshAuthToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	require.Equal(t, "fresh-access", tokens.AccessToken)
	require.Equal(t, "new-refresh", tokens.RefreshToken)
	require.Equal(t, int64(1715508000), tokens.ExpiresAt)
}

func TestRefreshAuthTokenRejectedGrant(t *testing.T) {
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Bad Request","errors":[{"field":"refresh_token","code":"invalid"}]}`))
	}))

	_, err := sdk.RefreshAuthToken(context.Background(), "revoked")
	require.ErrorIs(t, err, ErrorBadRequest)
}

func TestGetActivitiesByPageSendsBearerAndPaging(t *testing.T) {
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/athlete/activities", r.URL.Path)
		require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		require.Equal(t, "3", r.URL.Query().Get("page"))
		require.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":101,"name":"Morning Ride","type":"Ride","start_date":"2024-05-12T10:00:00Z","elapsed_time":2700,"moving_time":2650,"distance":21500.5,"max_speed":12.4},
			{"id":102,"name":"Lunch Run","type":"Run","start_date":"2024-05-12T12:30:00Z","elapsed_time":1800,"moving_time":1795,"distance":5000}
		]`))
	}))

	activities, err := sdk.GetActivitiesByPage(context.Background(), "access-token", 3, 50)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	require.Equal(t, int64(101), activities[0].ID)
	require.Equal(t, "Ride", activities[0].Type)
	require.Equal(t, time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC), activities[0].StartDate)
	require.Equal(t, 45*time.Minute, activities[0].Duration())
}

func TestGetActivityStreamsParsesSeries(t *testing.T) {
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/activities/101/streams", r.URL.Path)
		require.Equal(t, "time,latlng,altitude,heartrate,cadence,watts,temp", r.URL.Query().Get("keys"))
		require.Equal(t, "true", r.URL.Query().Get("key_by_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"time":{"data":[0,1,2]},
			"latlng":{"data":[[47.36,8.54],[47.361,8.541],[47.362,8.542]]},
			"heartrate":{"data":[120,125,130]}
		}`))
	}))

	streams, err := sdk.GetActivityStreams(context.Background(), "access-token", 101)
	require.NoError(t, err)
	require.Equal(t, 3, streams.Len())
	require.NotNil(t, streams.LatLng)
	require.Equal(t, 47.361, streams.LatLng.Data[1][0])
	require.NotNil(t, streams.Heartrate)
	require.Nil(t, streams.Watts)
	require.Nil(t, streams.Temp)
}

func TestRateLimitedResponseCarriesRetryAfter(t *testing.T) {
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	before := time.Now().UTC()
	_, err := sdk.GetActivitiesByPage(context.Background(), "access-token", 1, 50)

	var limited *TooManyRequestsError
	require.ErrorAs(t, err, &limited)
	require.True(t, limited.Until.After(before.Add(100*time.Second)))
	require.True(t, limited.Until.Before(before.Add(140*time.Second)))
}

func TestRateLimitSuspensionFailsFastLocally(t *testing.T) {
	var hits int32
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Retry-After", "300")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := sdk.GetActivitiesByPage(context.Background(), "access-token", 1, 50)
	require.Error(t, err)

	// second call must not reach the server while the window is exhausted
	_, err = sdk.GetActivitiesByPage(context.Background(), "access-token", 1, 50)
	var limited *TooManyRequestsError
	require.ErrorAs(t, err, &limited)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestUsageHeadersArmTheLimiter(t *testing.T) {
	var hits int32
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("X-Ratelimit-Limit", "100,1000")
		w.Header().Set("X-Ratelimit-Usage", "100,400")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))

	_, err := sdk.GetActivitiesByPage(context.Background(), "access-token", 1, 50)
	require.NoError(t, err)

	_, err = sdk.GetActivitiesByPage(context.Background(), "access-token", 2, 50)
	var limited *TooManyRequestsError
	require.ErrorAs(t, err, &limited)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestTransientServerErrorIsRetried(t *testing.T) {
	var hits int32
	sdk := newTestSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"type":"Run","start_date":"2024-05-12T10:00:00Z","elapsed_time":600}]`))
	}))

	activities, err := sdk.GetActivitiesByPage(context.Background(), "access-token", 1, 50)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	require.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
