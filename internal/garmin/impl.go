package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type clientImpl struct {
	client       *resty.Client
	uploadClient *resty.Client
	config       ClientConfig
}

const (
	searchPath = "/activitylist-service/activities/search/activities"
	uploadPath = "/upload-service/upload/.tcx"
	verifyPath = "/userprofile-service/socialProfile"
)

const (
	submitAttempts  = 3
	submitRetryWait = time.Second
)

var (
	csrfPattern   = regexp.MustCompile(`name="_csrf"\s+value="([^"]+)"`)
	ticketPattern = regexp.MustCompile(`ticket=([^"&']+)`)
)

// Login establishes a session. A configured auth token is validated
// against the profile endpoint; without one the SSO ticket exchange
// runs with the configured credentials.
func (gc *clientImpl) Login(ctx context.Context) error {
	if gc.config.AuthToken == "" {
		if err := gc.ssoLogin(ctx); err != nil {
			return err
		}
	}
	return gc.verifySession(ctx)
}

func (gc *clientImpl) verifySession(ctx context.Context) error {
	res, err := gc.client.R().
		SetContext(ctx).
		Get(gc.config.BaseURL + verifyPath)

	if err != nil {
		return &AuthError{Err: err}
	}
	if res.StatusCode() != http.StatusOK {
		return &AuthError{Err: makeHTTPError(res.StatusCode())}
	}
	return nil
}

// ssoLogin performs the ticket exchange: fetch the signin form for its
// csrf token, post the credentials, then trade the granted service
// ticket for session cookies.
func (gc *clientImpl) ssoLogin(ctx context.Context) error {
	signinURL := gc.config.SSOBaseURL + "/signin"
	serviceURL := gc.config.BaseURL + "/modern"
	ssoParams := map[string]string{
		"service":   serviceURL,
		"clientId":  "GarminConnect",
		"gauthHost": gc.config.SSOBaseURL,
	}

	res, err := gc.client.R().
		SetContext(ctx).
		SetQueryParams(ssoParams).
		Get(signinURL)
	if err != nil {
		return &AuthError{Err: err}
	}

	csrf := csrfPattern.FindSubmatch(res.Body())
	if csrf == nil {
		return &AuthError{Err: fmt.Errorf("no csrf token on signin page (HTTP %d)", res.StatusCode())}
	}

	res, err = gc.client.R().
		SetContext(ctx).
		SetQueryParams(ssoParams).
		SetHeader("Referer", signinURL).
		SetFormData(map[string]string{
			"username": gc.config.Email,
			"password": gc.config.Password,
			"embed":    "false",
			"_csrf":    string(csrf[1]),
			"_eventId": "submit",
		}).
		Post(signinURL)
	if err != nil {
		return &AuthError{Err: err}
	}

	ticket := ticketPattern.FindSubmatch(res.Body())
	if ticket == nil {
		return &AuthError{Err: fmt.Errorf("credentials rejected (HTTP %d)", res.StatusCode())}
	}

	res, err = gc.client.R().
		SetContext(ctx).
		SetQueryParam("ticket", string(ticket[1])).
		Get(serviceURL)
	if err != nil {
		return &AuthError{Err: err}
	}
	if res.StatusCode() != http.StatusOK {
		return &AuthError{Err: makeHTTPError(res.StatusCode())}
	}

	logrus.Debug("destination session established")
	return nil
}

// ActivitiesSince pages the destination's own listing over the lookback
// window. That listing is the ground truth for what has been synced.
func (gc *clientImpl) ActivitiesSince(ctx context.Context, since time.Time) ([]Activity, error) {
	activities := []Activity{}
	start := 0

	for {
		res, err := gc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"startDate": since.UTC().Format("2006-01-02"),
				"start":     strconv.Itoa(start),
				"limit":     strconv.Itoa(gc.config.PageSize),
			}).
			Get(gc.config.BaseURL + searchPath)

		if err != nil {
			return nil, err
		}
		if res.StatusCode() != http.StatusOK {
			return nil, makeHTTPError(res.StatusCode())
		}

		page := []Activity{}
		if err := json.Unmarshal(res.Body(), &page); err != nil {
			return nil, err
		}

		activities = append(activities, page...)
		if len(page) < gc.config.PageSize {
			return activities, nil
		}
		start += gc.config.PageSize
	}
}

// UploadTCX submits one document and follows its import to a terminal
// state. Processing is asynchronous on the destination side.
func (gc *clientImpl) UploadTCX(ctx context.Context, filename string, document []byte) (*UploadResult, error) {
	res, err := gc.submitUpload(ctx, filename, document)
	if err != nil {
		return nil, &UploadError{Reason: UploadReasonTransient, Err: err}
	}

	switch res.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	case http.StatusConflict:
		return nil, &UploadError{Reason: UploadReasonRejected, Message: "destination reported a conflicting activity"}
	default:
		return nil, &UploadError{Reason: UploadReasonTransient, Err: makeHTTPError(res.StatusCode())}
	}

	parsed := importResponse{}
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return nil, &UploadError{Reason: UploadReasonTransient, Err: err}
	}

	if result, err := importOutcome(parsed.DetailedImportResult); result != nil || err != nil {
		return result, err
	}

	if parsed.DetailedImportResult.UploadID == 0 {
		return nil, &UploadError{Reason: UploadReasonTransient, Err: errors.New("no upload id to poll")}
	}
	return gc.pollUpload(ctx, parsed.DetailedImportResult.UploadID)
}

// submitUpload posts the document, rebuilding the multipart body for
// every attempt; a reader drained by a failed attempt never replays.
// Only network failures and server side errors are retried.
func (gc *clientImpl) submitUpload(ctx context.Context, filename string, document []byte) (*resty.Response, error) {
	wait := submitRetryWait
	for attempt := 1; ; attempt++ {
		res, err := gc.uploadClient.R().
			SetContext(ctx).
			SetFileReader("file", filename, bytes.NewReader(document)).
			Post(gc.config.BaseURL + uploadPath)

		if err == nil || attempt == submitAttempts || !retryConditionFunc(res, err) {
			return res, err
		}

		logrus.Debugf("upload submission attempt %d of %d failed: %v", attempt, submitAttempts, err)
		time.Sleep(wait)
		wait *= 2
	}
}

// pollUpload waits for a pending import to finish. The document was
// already accepted, so the poll runs on a context that survives run
// cancellation; stopping midway would leave the outcome unknown.
func (gc *clientImpl) pollUpload(ctx context.Context, uploadID int64) (*UploadResult, error) {
	pollCtx := context.WithoutCancel(ctx)
	statusURL := fmt.Sprintf("%s/upload-service/upload/%d", gc.config.BaseURL, uploadID)

	for attempt := 1; attempt <= gc.config.PollAttempts; attempt++ {
		time.Sleep(gc.config.PollInterval)

		res, err := gc.client.R().
			SetContext(pollCtx).
			Get(statusURL)
		if err != nil {
			return nil, &UploadError{Reason: UploadReasonTransient, Err: err}
		}

		if res.StatusCode() == http.StatusAccepted {
			logrus.Debugf("upload %d still processing, poll %d of %d", uploadID, attempt, gc.config.PollAttempts)
			continue
		}
		if res.StatusCode() != http.StatusOK && res.StatusCode() != http.StatusCreated {
			return nil, &UploadError{Reason: UploadReasonTransient, Err: makeHTTPError(res.StatusCode())}
		}

		parsed := importResponse{}
		if err := json.Unmarshal(res.Body(), &parsed); err != nil {
			return nil, &UploadError{Reason: UploadReasonTransient, Err: err}
		}
		if result, err := importOutcome(parsed.DetailedImportResult); result != nil || err != nil {
			return result, err
		}
	}

	return nil, &UploadError{
		Reason: UploadReasonTransient,
		Err:    fmt.Errorf("import still pending after %d polls", gc.config.PollAttempts),
	}
}

// importOutcome reads a terminal import state; both results are nil
// while the import is still pending.
func importOutcome(result importResult) (*UploadResult, error) {
	if len(result.Successes) > 0 {
		return &UploadResult{ActivityID: result.Successes[0].InternalID}, nil
	}
	if len(result.Failures) > 0 {
		return nil, &UploadError{Reason: UploadReasonRejected, Message: failureText(result.Failures)}
	}
	return nil, nil
}

func failureText(failures []importFailure) string {
	parts := []string{}
	for _, failure := range failures {
		for _, message := range failure.Messages {
			parts = append(parts, message.Content)
		}
	}

	if len(parts) == 0 {
		return "no failure detail provided"
	}
	return strings.Join(parts, "; ")
}
