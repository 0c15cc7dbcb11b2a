package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs background jobs on cron schedules. Jobs receive the base
// context so a shutdown cancels in-flight work.
type Scheduler struct {
	cron   *cron.Cron
	base   context.Context
	logger *slog.Logger
}

func NewScheduler(base context.Context, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		base:   base,
		logger: logger,
	}
}

// AddJob registers fn under the given cron spec ("@every 1m" or standard
// five-field syntax).
func (s *Scheduler) AddJob(spec, name string, fn func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		fn(s.base)
	})
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("scheduled job registered", slog.String("job", name), slog.String("spec", spec))
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
