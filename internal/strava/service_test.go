package strava

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
)

type pageResponse struct {
	activities []sdk.Activity
	err        error
}

// stubSDK plays back queued responses and records what was asked of it.
type stubSDK struct {
	refreshTokensSeen []string
	refreshResponses  []*sdk.Tokens
	refreshErr        error

	pageQueue    []pageResponse
	pageRequests []int

	streams    *sdk.StreamSet
	streamsErr error
}

func (s *stubSDK) RefreshAuthToken(ctx context.Context, refreshToken string) (*sdk.Tokens, error) {
	s.refreshTokensSeen = append(s.refreshTokensSeen, refreshToken)
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}

	tokens := s.refreshResponses[0]
	if len(s.refreshResponses) > 1 {
		s.refreshResponses = s.refreshResponses[1:]
	}
	return tokens, nil
}

func (s *stubSDK) GetActivitiesByPage(ctx context.Context, token string, page int, perPage int) ([]sdk.Activity, error) {
	s.pageRequests = append(s.pageRequests, page)
	if len(s.pageQueue) == 0 {
		return nil, nil
	}

	next := s.pageQueue[0]
	s.pageQueue = s.pageQueue[1:]
	return next.activities, next.err
}

func (s *stubSDK) GetActivityStreams(ctx context.Context, token string, activityID int64) (*sdk.StreamSet, error) {
	if s.streamsErr != nil {
		return nil, s.streamsErr
	}
	return s.streams, nil
}

func TestNewServiceWiresOneSDK(t *testing.T) {
	stub := &stubSDK{refreshResponses: []*sdk.Tokens{{
		AccessToken: "access",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}}}

	service := NewService(stub, ServiceConfig{
		RefreshToken: "refresh",
		PageSize:     50,
		ExpiryMargin: 5 * time.Minute,
	})

	token, err := service.Tokens.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access", token)
	require.Equal(t, []string{"refresh"}, stub.refreshTokensSeen)
}
