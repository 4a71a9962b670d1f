package garmin

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
	ErrorUnauthorized        = makeHTTPError(http.StatusUnauthorized)
	ErrorForbidden           = makeHTTPError(http.StatusForbidden)
	ErrorNotFound            = makeHTTPError(http.StatusNotFound)
	ErrorInternalServerError = makeHTTPError(http.StatusInternalServerError)
	ErrorBadGateway          = makeHTTPError(http.StatusBadGateway)
	ErrorServiceUnavailable  = makeHTTPError(http.StatusServiceUnavailable)
)

// Client wraps API calls to Garmin Connect
type Client interface {
	// session APIs
	Login(ctx context.Context) error

	// activity APIs
	ActivitiesSince(ctx context.Context, since time.Time) ([]Activity, error)
	UploadTCX(ctx context.Context, filename string, document []byte) (*UploadResult, error)
}

type ClientConfig struct {
	Email      string
	Password   string
	AuthToken  string
	BaseURL    string
	SSOBaseURL string
	Timeout    time.Duration
	PageSize   int

	// upload processing is asynchronous on the destination side
	PollInterval time.Duration
	PollAttempts int
}

const (
	apiRootURL = "https://connect.garmin.com"
	ssoRootURL = "https://sso.garmin.com/sso"

	defaultPageSize     = 100
	defaultPollInterval = 3 * time.Second
	defaultPollAttempts = 5
)

// NewClient create a new client
func NewClient(config ClientConfig) Client {
	if config.BaseURL == "" {
		config.BaseURL = apiRootURL
	}
	if config.SSOBaseURL == "" {
		config.SSOBaseURL = ssoRootURL
	}
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.PollAttempts <= 0 {
		config.PollAttempts = defaultPollAttempts
	}

	api, upload := newHTTPClients(config)
	return &clientImpl{
		client:       api,
		uploadClient: upload,
		config:       config,
	}
}
