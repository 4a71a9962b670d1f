// Package syncer drives the full sync pass: refresh credentials, list
// both sides of the window, drop what the destination already has, then
// materialize, convert and upload the rest.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nmiodice/strava-garmin-sync/internal/concurrency"
	"github.com/nmiodice/strava-garmin-sync/internal/fingerprint"
	"github.com/nmiodice/strava-garmin-sync/internal/garmin"
	"github.com/nmiodice/strava-garmin-sync/internal/locks"
	"github.com/nmiodice/strava-garmin-sync/internal/observability"
	"github.com/nmiodice/strava-garmin-sync/internal/state"
	"github.com/nmiodice/strava-garmin-sync/internal/strava"
	"github.com/nmiodice/strava-garmin-sync/internal/strava/sdk"
	"github.com/nmiodice/strava-garmin-sync/internal/tcx"
)

// ErrRunInProgress is returned when a run is refused because another
// one holds the run lock. The refused caller is not queued.
var ErrRunInProgress = errors.New("a sync run is already in progress")

const (
	defaultDays    = 7
	defaultWorkers = 2
	defaultPadding = 24 * time.Hour
)

// TokenSource supplies source access tokens and reports rotation.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	RotatedRefreshToken() (string, bool)
}

// SourceLister lists source activities inside the lookback window.
type SourceLister interface {
	ListSince(ctx context.Context, token string, since time.Time) ([]sdk.Activity, error)
}

// Materializer fetches the sample streams behind a listed activity.
type Materializer interface {
	Materialize(ctx context.Context, token string, activity sdk.Activity) (*strava.MaterializedActivity, error)
}

// Dependencies are the collaborators a run needs.
type Dependencies struct {
	Tokens       TokenSource
	Lister       SourceLister
	Materializer Materializer
	Destination  garmin.Client
	Lock         locks.Lock
	Tracker      *state.Tracker
}

// Config carries the tunables of a run.
type Config struct {
	// Workers bounds how many activities are processed at once.
	Workers int
	// IndexPadding widens the destination listing beyond the source
	// window so boundary activities still land in the dedupe index.
	IndexPadding time.Duration
	Tolerances   fingerprint.Tolerances
}

// Engine executes sync runs. One Engine serves the whole process, runs
// are serialized through the run lock.
type Engine struct {
	deps   Dependencies
	config Config

	mu         sync.Mutex
	lastReport *Report
}

func NewEngine(deps Dependencies, config Config) *Engine {
	if config.Workers <= 0 {
		config.Workers = defaultWorkers
	}
	if config.IndexPadding <= 0 {
		config.IndexPadding = defaultPadding
	}
	return &Engine{deps: deps, config: config}
}

// Run executes one sync pass over the last `days` days. A second caller
// while a run is active gets ErrRunInProgress. Failures inside the run
// never surface as an error; they are recorded on the report, either as
// an abort or as per-activity outcomes.
func (e *Engine) Run(ctx context.Context, days int) (*Report, error) {
	if days <= 0 {
		days = defaultDays
	}

	var report *Report
	acquired, err := e.deps.Lock.WithLock(ctx, func() error {
		report = e.runLocked(ctx, days)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrRunInProgress
	}

	e.mu.Lock()
	e.lastReport = report
	e.mu.Unlock()
	return report, nil
}

// LastReport returns the report of the most recently finished run, nil
// before the first one completes.
func (e *Engine) LastReport() *Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastReport
}

func (e *Engine) runLocked(ctx context.Context, days int) *Report {
	report := newReport(days, time.Now().UTC())
	log := logrus.WithFields(logrus.Fields{"run_id": report.RunID, "days": days})

	log.Info("sync run starting")
	observability.RecordRunStarted()

	defer func() {
		e.deps.Tracker.Set(state.Idle)
		report.FinishedAt = time.Now().UTC()
		observability.RecordRunFinished(report.Aborted)
		for _, result := range report.Results {
			observability.RecordActivityOutcome(string(result.Outcome))
		}
		log.WithFields(logrus.Fields{
			"aborted":  report.Aborted,
			"listed":   report.Listed,
			"uploaded": report.Counts[OutcomeUploaded],
			"duration": report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond).String(),
		}).Info("sync run finished")
	}()

	e.deps.Tracker.Set(state.Authenticating)
	token, err := e.deps.Tokens.AccessToken(ctx)
	if err != nil {
		return e.abort(report, log, "source credential refresh failed", err)
	}
	if err := e.deps.Destination.Login(ctx); err != nil {
		return e.abort(report, log, "destination login failed", err)
	}

	// both sides of the window are listed at the same time, neither
	// depends on the other
	e.deps.Tracker.Set(state.Listing)
	var (
		source []sdk.Activity
		index  fingerprint.Index
	)
	listTasks := []func() error{
		func() error {
			activities, listErr := e.deps.Lister.ListSince(ctx, token, report.Since)
			if listErr != nil {
				return fmt.Errorf("listing source activities: %w", listErr)
			}
			source = activities
			return nil
		},
		func() error {
			existing, destErr := e.deps.Destination.ActivitiesSince(ctx, report.Since.Add(-e.config.IndexPadding))
			if destErr != nil {
				return fmt.Errorf("listing destination activities: %w", destErr)
			}
			index = e.buildIndex(log, existing)
			return nil
		},
	}
	if err := concurrency.NewSemaphore(len(listTasks)).WithRateLimit(ctx, listTasks, false); err != nil {
		return e.abort(report, log, "window listing failed", err)
	}

	report.Listed = len(source)
	log.WithFields(logrus.Fields{"source": len(source), "indexed": index.Size()}).Info("window listed on both sides")

	e.deps.Tracker.Set(state.Deduplicating)
	pending := []sdk.Activity{}
	for _, activity := range source {
		key := fingerprint.Of(activity.StartDate, activity.Duration(), activity.Type, e.config.Tolerances)
		if index.Exists(key) {
			report.add(ActivityResult{
				ActivityID: activity.ID,
				Name:       activity.Name,
				Type:       activity.Type,
				StartDate:  activity.StartDate,
				Outcome:    OutcomeSkippedDuplicate,
			})
			continue
		}
		// claim the key so a second listing of the same workout inside
		// this window uploads only once
		index.Add(key)
		pending = append(pending, activity)
	}

	e.deps.Tracker.Set(state.Processing)
	results := make([]*ActivityResult, len(pending))
	tasks := make([]func() error, len(pending))
	for i, activity := range pending {
		tasks[i] = func() error {
			results[i] = e.processActivity(ctx, log, token, activity)
			return nil
		}
	}
	if err := concurrency.NewSemaphore(e.config.Workers).WithRateLimit(ctx, tasks, false); err != nil {
		report.Aborted = true
		report.AbortCause = fmt.Sprintf("processing interrupted: %v", err)
		log.WithError(err).Warn("processing interrupted, remaining activities were not attempted")
	}
	for _, result := range results {
		if result != nil {
			report.add(*result)
		}
	}

	e.deps.Tracker.Set(state.Reporting)
	if rotated, ok := e.deps.Tokens.RotatedRefreshToken(); ok {
		report.RotatedRefreshToken = rotated
	}
	return report
}

func (e *Engine) abort(report *Report, log *logrus.Entry, cause string, err error) *Report {
	report.Aborted = true
	report.AbortCause = fmt.Sprintf("%s: %v", cause, err)
	log.WithError(err).Error(cause)
	return report
}

// buildIndex fingerprints the destination's recent activities. That
// listing is the only dedupe ledger there is, no sync state lives
// anywhere else.
func (e *Engine) buildIndex(log *logrus.Entry, existing []garmin.Activity) fingerprint.Index {
	index := fingerprint.NewIndex()
	for _, activity := range existing {
		start, err := activity.StartTime()
		if err != nil {
			log.WithError(err).WithField("destination_id", activity.ActivityID).Warn("skipping destination activity with unparseable start time")
			continue
		}
		index.Add(fingerprint.Of(start, activity.Elapsed(), activity.ActivityType.TypeKey, e.config.Tolerances))
	}
	return index
}

// processActivity takes one activity through materialize, convert and
// upload. Whatever happens stays contained in the returned result, one
// bad activity never stops the others.
func (e *Engine) processActivity(ctx context.Context, log *logrus.Entry, token string, activity sdk.Activity) *ActivityResult {
	result := &ActivityResult{
		ActivityID: activity.ID,
		Name:       activity.Name,
		Type:       activity.Type,
		StartDate:  activity.StartDate,
	}
	alog := log.WithFields(logrus.Fields{"activity_id": activity.ID, "type": activity.Type})

	materialized, err := e.deps.Materializer.Materialize(ctx, token, activity)
	if err != nil {
		alog.WithError(err).Warn("activity could not be materialized")
		result.Outcome = OutcomeFailedMaterialize
		result.Detail = err.Error()
		return result
	}

	document, err := tcx.Convert(materialized.Activity, materialized.Streams)
	if err != nil {
		var convErr *tcx.ConversionError
		if errors.As(err, &convErr) && convErr.Reason == tcx.ConversionReasonUnsupportedType {
			alog.WithField("detail", err.Error()).Info("activity type has no destination sport, skipping")
			result.Outcome = OutcomeSkippedUnsupported
		} else {
			alog.WithError(err).Warn("activity could not be converted")
			result.Outcome = OutcomeFailedConvert
		}
		result.Detail = err.Error()
		return result
	}

	// a started upload runs to completion even when the run is canceled,
	// interrupting it midway would leave the outcome unknown
	uploadCtx := context.WithoutCancel(ctx)
	started := time.Now()
	uploaded, err := e.deps.Destination.UploadTCX(uploadCtx, tcx.Filename(activity.ID), document)
	observability.RecordUploadDuration(time.Since(started))
	if err != nil {
		alog.WithError(err).Warn("activity could not be uploaded")
		result.Outcome = OutcomeFailedUpload
		result.Detail = err.Error()
		return result
	}

	alog.WithField("destination_id", uploaded.ActivityID).Info("activity uploaded")
	result.Outcome = OutcomeUploaded
	result.DestinationID = uploaded.ActivityID
	return result
}
