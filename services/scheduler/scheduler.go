package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/studash/dashboard/core"
)

type (
	// OverdueMarker flips open tasks past their deadline to overdue.
	OverdueMarker interface {
		MarkOverdue(ctx context.Context, at time.Time) (int, error)
	}

	Scheduler struct {
		cron    *cron.Cron
		tasks   OverdueMarker
		logger  core.Logger
		timeout time.Duration
		nowFunc func() time.Time
	}
)

func New(conf *core.Config, tasks OverdueMarker, logger core.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		tasks:   tasks,
		logger:  logger,
		timeout: time.Minute,
		nowFunc: time.Now,
	}
	if conf.Scheduler.OverdueSweepSpec == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(conf.Scheduler.OverdueSweepSpec, s.SweepOverdue); err != nil {
		return nil, errors.Wrapf(err, "scheduling overdue sweep %q", conf.Scheduler.OverdueSweepSpec)
	}
	return s, nil
}

// SweepOverdue runs a single overdue sweep.
func (s *Scheduler) SweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.tasks.MarkOverdue(ctx, s.nowFunc())
	if err != nil {
		s.logger.Error("overdue sweep failed", err)
		return
	}
	if n > 0 {
		s.logger.Info(fmt.Sprintf("overdue sweep: %d task(s) marked overdue", n))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
