package sdk

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

func makeHTTPError(code int) error {
	return fmt.Errorf("HTTP status = %d", code)
}

// Common error codes for HTTP responses
var (
	ErrorBadRequest          = makeHTTPError(http.StatusBadRequest)
	ErrorUnauthorized        = makeHTTPError(http.StatusUnauthorized)
	ErrorNotFound            = makeHTTPError(http.StatusNotFound)
	ErrorInternalServerError = makeHTTPError(http.StatusInternalServerError)
	ErrorBadGateway          = makeHTTPError(http.StatusBadGateway)
	ErrorServiceUnavailable  = makeHTTPError(http.StatusServiceUnavailable)
)

// TooManyRequestsError reports that a rate limit bucket is exhausted.
// Until is the time at which requests may resume.
type TooManyRequestsError struct {
	Until time.Time
}

func (e *TooManyRequestsError) Error() string {
	return fmt.Sprintf("HTTP status = %d, limited until %s", http.StatusTooManyRequests, e.Until.UTC().Format(time.RFC3339))
}

// StravaSDK wraps API calls to Strava
type StravaSDK interface {
	// authentication APIs
	RefreshAuthToken(ctx context.Context, refreshToken string) (*Tokens, error)

	// athlete APIs
	GetActivitiesByPage(ctx context.Context, token string, page int, perPage int) ([]Activity, error)
	GetActivityStreams(ctx context.Context, token string, activityID int64) (*StreamSet, error)
}

type StravaSDKConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
}

// NewStravaSDK create a new SDK
func NewStravaSDK(config StravaSDKConfig) StravaSDK {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = apiRootURL
	}

	return sdkImpl{
		client:       newHTTPClient(config.Timeout),
		baseURL:      baseURL,
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
	}
}
