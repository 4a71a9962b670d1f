package garmin

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// determine whether or not to retry a request
func retryConditionFunc(r *resty.Response, err error) bool {
	switch {
	case errors.Is(err, ErrorInternalServerError),
		errors.Is(err, ErrorBadGateway),
		errors.Is(err, ErrorServiceUnavailable):
		logrus.Debugf("received %+v, will retry", err)
		return true
	case err != nil && r != nil && r.StatusCode() == 0:
		// transport level failure, no response was received
		return true
	default:
		return false
	}
}

// convert failure statuses into errors. Statuses that individual
// endpoints read directly pass through as responses: the 202 of a
// pending import and the 409 of a duplicate upload.
func afterResponseAPIError(c *resty.Client, r *resty.Response) error {
	switch r.StatusCode() {
	case http.StatusUnauthorized:
		return ErrorUnauthorized
	case http.StatusForbidden:
		return ErrorForbidden
	case http.StatusNotFound:
		return ErrorNotFound
	case http.StatusInternalServerError:
		return ErrorInternalServerError
	case http.StatusBadGateway:
		return ErrorBadGateway
	case http.StatusServiceUnavailable:
		return ErrorServiceUnavailable
	default:
		return nil
	}
}

func baseClient(httpClient *http.Client, config ClientConfig) *resty.Client {
	client := resty.
		NewWithClient(httpClient).
		OnAfterResponse(afterResponseAPIError).
		SetHeader("NK", "NT").
		SetHeader("User-Agent", "strava-garmin-sync")

	if config.AuthToken != "" {
		client.SetAuthToken(config.AuthToken)
	}

	return client
}

// newHTTPClients returns the API client and the upload client. Both
// share one cookie jar so the SSO session covers uploads too. The
// upload client carries no transport retry policy, a drained multipart
// body does not replay; submission retries rebuild the body instead.
func newHTTPClients(config ClientConfig) (*resty.Client, *resty.Client) {
	jar, _ := cookiejar.New(nil)
	httpClient := &http.Client{Timeout: config.Timeout, Jar: jar}

	api := baseClient(httpClient, config).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(4 * time.Second).
		AddRetryCondition(retryConditionFunc)

	upload := baseClient(httpClient, config)

	return api, upload
}
