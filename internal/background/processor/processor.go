// Package processor schedules background jobs on cron expressions.
package processor

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type ProcessorFunc func(ctx context.Context) error

type ProcessorConfiguration struct {
	Func     ProcessorFunc
	Schedule string
	Name     string
}

// Processor dispatches registered jobs on their schedules. Jobs run on
// the dispatcher's goroutines, one slot at a time per job.
type Processor struct {
	cron *cron.Cron
}

func New() *Processor {
	return &Processor{cron: cron.New()}
}

// Register adds a job. Schedules use the standard five field cron
// syntax or descriptors such as @daily and @every 6h.
func (p *Processor) Register(ctx context.Context, config ProcessorConfiguration) error {
	_, err := p.cron.AddFunc(config.Schedule, func() {
		runJob(ctx, config)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"job":      config.Name,
		"schedule": config.Schedule,
	}).Info("background job registered")
	return nil
}

func runJob(ctx context.Context, config ProcessorConfiguration) {
	log := logrus.WithField("job", config.Name)
	log.Info("scheduled job starting")

	if err := config.Func(ctx); err != nil {
		log.WithError(err).Error("scheduled job failed")
		return
	}
	log.Info("scheduled job finished")
}

// Start begins dispatching registered jobs.
func (p *Processor) Start() {
	p.cron.Start()
}

// Stop ends dispatching. The returned context is done once every job
// that was mid-flight has returned.
func (p *Processor) Stop() context.Context {
	return p.cron.Stop()
}
