package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"botdash/configs"
)

// Sweeper expires due subscriptions
type Sweeper interface {
	SweepSubscriptions(ctx context.Context) (int, error)
}

// Reminder notifies users whose subscription ends soon
type Reminder interface {
	RemindExpiring(ctx context.Context, days int) (int, error)
}

// Pruner drops signal logs older than the retention window
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	cfg      configs.JobsConfig
	sweeper  Sweeper
	reminder Reminder
	pruner   Pruner
	log      *logrus.Entry
}

// NewScheduler creates a new scheduler. Specs use the standard five-field
// cron format evaluated in loc.
func NewScheduler(cfg configs.JobsConfig, sweeper Sweeper, reminder Reminder, pruner Pruner, loc *time.Location, log *logrus.Entry) *Scheduler {
	log = log.WithField("component", "scheduler")
	cronLog := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		cfg:      cfg,
		sweeper:  sweeper,
		reminder: reminder,
		pruner:   pruner,
		log:      log,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"subscription-sweep", s.cfg.SweepSpec, s.RunSweepNow},
		{"expiry-reminders", s.cfg.ReminderSpec, s.runReminders},
		{"signal-prune", s.cfg.PruneSpec, s.runPrune},
	}

	for _, job := range jobs {
		if job.spec == "" {
			s.log.WithField("job", job.name).Info("Job disabled")
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, job.spec, err)
		}
		s.log.WithFields(logrus.Fields{"job": job.name, "spec": job.spec}).Info("Job scheduled")
	}

	s.cron.Start()
	s.log.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunSweepNow runs the subscription sweep synchronously
func (s *Scheduler) RunSweepNow() {
	n, err := s.sweeper.SweepSubscriptions(context.Background())
	if err != nil {
		s.log.WithError(err).Error("Subscription sweep failed")
		return
	}
	s.log.WithField("expired", n).Info("Subscription sweep finished")
}

func (s *Scheduler) runReminders() {
	n, err := s.reminder.RemindExpiring(context.Background(), s.cfg.ReminderDays)
	if err != nil {
		s.log.WithError(err).Error("Expiry reminders failed")
		return
	}
	s.log.WithField("sent", n).Info("Expiry reminders sent")
}

func (s *Scheduler) runPrune() {
	n, err := s.pruner.Prune(context.Background(), s.cfg.SignalRetention)
	if err != nil {
		s.log.WithError(err).Error("Signal prune failed")
		return
	}
	s.log.WithField("deleted", n).Info("Signal logs pruned")
}
