// Package scheduler runs the periodic maintenance jobs: ledger reconciliation
// and verification token cleanup.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/services"
)

// Reconciler compares cached member balances with the credit ledger.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]services.BalanceDrift, error)
}

// TokenPurger removes expired verification tokens.
type TokenPurger interface {
	PurgeTokens(ctx context.Context) (int64, error)
}

type Config struct {
	Enabled        bool
	ReconcileCron  string
	TokenPurgeCron string
}

// Scheduler owns the gocron scheduler and guards each job against
// overlapping runs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reconcile Reconciler
	purge     TokenPurger
	config    Config
	log       logrus.FieldLogger

	mu                 sync.Mutex
	running            map[string]bool
	lastReconcileAt    time.Time
	lastReconcileDrift int
}

func New(cfg Config, reconcile Reconciler, purge TokenPurger, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		reconcile: reconcile,
		purge:     purge,
		config:    cfg,
		log:       log.WithField("component", "scheduler"),
		running:   map[string]bool{},
	}
}

// Start registers the jobs and runs them until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("scheduler disabled by configuration")
		return nil
	}

	jobs := []struct {
		name string
		cron string
		run  func(context.Context) error
	}{
		{"reconcile", s.config.ReconcileCron, s.RunReconcile},
		{"token_purge", s.config.TokenPurgeCron, s.RunTokenPurge},
	}

	for _, job := range jobs {
		if job.cron == "" {
			continue
		}
		_, err := s.scheduler.Cron(job.cron).Do(func() {
			if err := job.run(ctx); err != nil {
				s.log.WithError(err).WithField("job", job.name).Error("scheduled job failed")
			}
		})
		if err != nil {
			return errors.Wrapf(err, "schedule %s", job.name)
		}
		s.log.WithFields(logrus.Fields{"job": job.name, "cron": job.cron}).Info("job scheduled")
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		s.log.Info("stopping scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// RunReconcile runs one reconciliation pass. It is a no-op while a previous
// pass is still running.
func (s *Scheduler) RunReconcile(ctx context.Context) error {
	if !s.acquire("reconcile") {
		s.log.Warn("reconcile already running")
		return nil
	}
	defer s.release("reconcile")

	drift, err := s.reconcile.Reconcile(ctx)
	if err != nil {
		return errors.Wrap(err, "reconcile balances")
	}

	s.mu.Lock()
	s.lastReconcileAt = time.Now()
	s.lastReconcileDrift = len(drift)
	s.mu.Unlock()

	entry := s.log.WithField("drifted", len(drift))
	if len(drift) > 0 {
		entry.Warn("reconcile repaired balances")
	} else {
		entry.Info("reconcile finished")
	}
	return nil
}

func (s *Scheduler) RunTokenPurge(ctx context.Context) error {
	if !s.acquire("token_purge") {
		return nil
	}
	defer s.release("token_purge")

	n, err := s.purge.PurgeTokens(ctx)
	if err != nil {
		return errors.Wrap(err, "purge tokens")
	}
	s.log.WithField("removed", n).Debug("token purge finished")
	return nil
}

// LastReconcile reports when reconciliation last finished and how many
// members drifted.
func (s *Scheduler) LastReconcile() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReconcileAt, s.lastReconcileDrift
}

func (s *Scheduler) acquire(job string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[job] {
		return false
	}
	s.running[job] = true
	return true
}

func (s *Scheduler) release(job string) {
	s.mu.Lock()
	s.running[job] = false
	s.mu.Unlock()
}
