// Package syncjob wraps the sync engine as a schedulable background job.
package syncjob

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nmiodice/strava-garmin-sync/internal/background/processor"
	"github.com/nmiodice/strava-garmin-sync/internal/syncer"
)

// runner is what the job needs from the sync engine.
type runner interface {
	Run(ctx context.Context, days int) (*syncer.Report, error)
}

func makeScheduledSyncFunc(engine runner, days int) processor.ProcessorFunc {
	return func(ctx context.Context) error {
		report, err := engine.Run(ctx, days)
		if errors.Is(err, syncer.ErrRunInProgress) {
			logrus.Info("previous sync run still active, skipping this slot")
			return nil
		}
		if err != nil {
			return err
		}
		if report.Aborted {
			return fmt.Errorf("sync run aborted: %s", report.AbortCause)
		}
		return nil
	}
}

// ScheduledSyncConfig returns the recurring sync job. A slot that fires
// while the previous run still holds the run lock is skipped, the
// active run already covers the window.
func ScheduledSyncConfig(engine runner, days int, schedule string) processor.ProcessorConfiguration {
	return processor.ProcessorConfiguration{
		Func:     makeScheduledSyncFunc(engine, days),
		Schedule: schedule,
		Name:     "scheduled-sync",
	}
}
