package jobs

import (
	"context"
	"fmt"
	"time"

	"healthcare-booking/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named background jobs on cron specs.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: 5 * time.Minute,
	}
}

// Add registers job under spec; each run gets its own timeout bound context.
func (s *Scheduler) Add(spec, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		started := time.Now()
		if err := job(ctx); err != nil {
			logger.Error(fmt.Sprintf("Job %s failed", name), err)
			return
		}
		logger.Debug(fmt.Sprintf("Job %s finished in %s", name, time.Since(started)))
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	logger.Info(fmt.Sprintf("Scheduled job %s (%s)", name, spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Warning("Timed out waiting for scheduled jobs to finish")
	}
}
