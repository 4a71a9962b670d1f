package strava

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
)

// Lister walks the athlete activity listing newest first and returns
// every syncable activity that started inside the lookback window.
type Lister struct {
	sdk      sdk.StravaSDK
	pageSize int
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewLister(stravaSDK sdk.StravaSDK, pageSize int) *Lister {
	return &Lister{
		sdk:      stravaSDK,
		pageSize: pageSize,
		sleep:    sleepContext,
	}
}

// ListSince pages through the listing until it sees an empty page or a
// page whose every entry predates the window. Entries older than the
// window and entries with no positive duration are dropped.
func (l *Lister) ListSince(ctx context.Context, token string, since time.Time) ([]sdk.Activity, error) {
	page := 1
	activities := []sdk.Activity{}

	for {
		pageActivities, err := l.getPage(ctx, token, page)
		if err != nil {
			return nil, err
		}

		if len(pageActivities) == 0 {
			return activities, nil
		}

		allOlder := true
		for _, activity := range pageActivities {
			if activity.StartDate.Before(since) {
				continue
			}
			allOlder = false

			if activity.ElapsedTime <= 0 {
				logrus.Debugf("dropping activity %d, no positive duration", activity.ID)
				continue
			}
			activities = append(activities, activity)
		}

		if allOlder {
			return activities, nil
		}
		page++
	}
}

// getPage fetches one page. A rate limited page honors the wait the API
// mandates and is re-requested exactly once; a second refusal fails the
// listing.
func (l *Lister) getPage(ctx context.Context, token string, page int) ([]sdk.Activity, error) {
	pageActivities, err := l.sdk.GetActivitiesByPage(ctx, token, page, l.pageSize)

	var limited *sdk.TooManyRequestsError
	if !errors.As(err, &limited) {
		return pageActivities, err
	}

	wait := time.Until(limited.Until)
	logrus.Infof("rate limited on listing page %d, waiting %s", page, wait.Round(time.Second))
	if err := l.sleep(ctx, wait); err != nil {
		return nil, err
	}

	pageActivities, err = l.sdk.GetActivitiesByPage(ctx, token, page, l.pageSize)
	if errors.As(err, &limited) {
		return nil, &RateLimitError{RetryAfter: time.Until(limited.Until), Err: err}
	}
	return pageActivities, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
