package sdk

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	rateLimitHeader      = "X-Ratelimit-Limit"
	rateLimitUsageHeader = "X-Ratelimit-Usage"
	retryAfterHeader     = "Retry-After"
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

// convert non 200 status code responses into errors
func makeAPIErrorResponseMiddleware(limits *rateLimitState) resty.ResponseMiddleware {
	return func(c *resty.Client, r *resty.Response) error {
		switch r.StatusCode() {
		case http.StatusBadRequest:
			return ErrorBadRequest
		case http.StatusUnauthorized:
			return ErrorUnauthorized
		case http.StatusNotFound:
			return ErrorNotFound
		case http.StatusTooManyRequests:
			return &TooManyRequestsError{Until: limits.LimitedUntil()}
		case http.StatusInternalServerError:
			return ErrorInternalServerError
		case http.StatusBadGateway:
			return ErrorBadGateway
		case http.StatusServiceUnavailable:
			return ErrorServiceUnavailable
		default:
			if r.StatusCode() >= 300 {
				return makeHTTPError(r.StatusCode())
			}
			return nil
		}
	}
}

// fail requests locally while a rate limit window is known to be exhausted
func makeAPILimitRequestMiddleware(limits *rateLimitState) resty.RequestMiddleware {
	return func(c *resty.Client, r *resty.Request) error {
		limitedUntil := limits.LimitedUntil()
		if time.Now().UTC().Before(limitedUntil) {
			logrus.Debugf("holding request, rate limited until %s", limitedUntil.Format(time.RFC3339))
			return &TooManyRequestsError{Until: limitedUntil}
		}
		return nil
	}
}

type rateLimit struct {
	fifteenMinute int
	daily         int
}

// parse header containing rate limit information
func parseRateLimitHeader(r *resty.Response, headerName string) *rateLimit {
	h := r.Header().Get(headerName)
	parts := strings.Split(h, ",")
	if len(parts) != 2 {
		return nil
	}

	fifteenMinute, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	daily, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}

	return &rateLimit{fifteenMinute, daily}
}

func getDelayTime(bucket time.Duration) time.Time {
	return time.Now().UTC().Truncate(bucket).Add(bucket)
}

// the API communicates a retry delay on 429 responses; fall back to the
// start of the next 15 minute window when the header is missing
func retryAfterTime(r *resty.Response) time.Time {
	if h := r.Header().Get(retryAfterHeader); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil {
			return time.Now().UTC().Add(time.Duration(seconds) * time.Second)
		}
	}
	return getDelayTime(15 * time.Minute)
}

// record consumed rate limit
func makeAPILimitResponseMiddleware(limits *rateLimitState) resty.ResponseMiddleware {
	return func(c *resty.Client, r *resty.Response) error {
		if r.StatusCode() == http.StatusTooManyRequests {
			limits.LimitUntil(retryAfterTime(r))
			return nil
		}

		limit := parseRateLimitHeader(r, rateLimitHeader)
		used := parseRateLimitHeader(r, rateLimitUsageHeader)
		if limit == nil || used == nil {
			return nil
		}

		if used.daily >= limit.daily {
			limits.LimitUntil(getDelayTime(24 * time.Hour))
		} else if used.fifteenMinute >= limit.fifteenMinute {
			limits.LimitUntil(getDelayTime(15 * time.Minute))
		}

		return nil
	}
}

func newHTTPClient(timeout time.Duration) *resty.Client {
	httpClient := &http.Client{Timeout: timeout}
	limits := newRateLimitState()
	return resty.
		NewWithClient(httpClient).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(4 * time.Second).
		AddRetryCondition(retryConditionFunc).
		OnBeforeRequest(makeAPILimitRequestMiddleware(limits)).
		OnAfterResponse(makeAPILimitResponseMiddleware(limits)).
		OnAfterResponse(makeAPIErrorResponseMiddleware(limits))
}
