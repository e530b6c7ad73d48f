package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Scheduler drives recurring jobs off a cron timer. Jobs run in their
// own goroutines, so a slow tick never delays the timer; the base
// context is carried into every run and Stop waits for running jobs.
type Scheduler struct {
	cron    *cron.Cron
	baseCtx context.Context
	errFn   func(error)
}

// New creates a scheduler with second-resolution cron specs. errFn, if
// not nil, receives every job error.
func New(baseCtx context.Context, errFn func(error)) *Scheduler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		baseCtx: baseCtx,
		errFn:   errFn,
	}
}

func (s *Scheduler) AddJob(spec string, job func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.baseCtx); err != nil && s.errFn != nil {
			s.errFn(err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the timer and blocks until in-flight jobs return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
