package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	resty "github.com/go-resty/resty/v2"
)

type sdkImpl struct {
	client       *resty.Client
	baseURL      string
	clientID     string
	clientSecret string
}

const (
	// according to https://developers.strava.com/docs/
	maxPaginatedResults = 200
	apiRootURL          = "https://www.strava.com/api/v3/"

	// the series the destination document format can represent
	streamKeys = "time,latlng,altitude,heartrate,cadence,watts,temp"
)

func (sdk sdkImpl) RefreshAuthToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	res, err := sdk.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     sdk.clientID,
			"client_secret": sdk.clientSecret,
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		Post(sdk.baseURL + "oauth/token")

	if err != nil {
		return nil, err
	}

	tokens := &Tokens{}
	err = json.Unmarshal(res.Body(), tokens)
	return tokens, err
}

// GetActivitiesByPage returns one page of the athlete's activities,
// newest first
func (sdk sdkImpl) GetActivitiesByPage(ctx context.Context, token string, page int, perPage int) ([]Activity, error) {
	activities := []Activity{}

	if perPage > maxPaginatedResults {
		perPage = maxPaginatedResults
	}

	res, err := sdk.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParams(map[string]string{
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(perPage),
		}).
		Get(sdk.baseURL + "athlete/activities")

	if err != nil {
		return activities, err
	}

	err = json.Unmarshal(res.Body(), &activities)
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// GetActivityStreams returns the per-sample series of one activity,
// keyed by stream type
func (sdk sdkImpl) GetActivityStreams(ctx context.Context, token string, activityID int64) (*StreamSet, error) {
	url := fmt.Sprintf("%sactivities/%d/streams", sdk.baseURL, activityID)
	res, err := sdk.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParams(map[string]string{
			"keys":        streamKeys,
			"key_by_type": "true",
		}).
		Get(url)

	if err != nil {
		return nil, err
	}

	streams := &StreamSet{}
	err = json.Unmarshal(res.Body(), streams)
	return streams, err
}
