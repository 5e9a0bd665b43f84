// Package scheduler runs the periodic background jobs: the daily due-date
// reminder sweep and the purge of expired blocklist entries.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/metrics"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

const (
	jobDueDateSweep = "due_date_sweep"
	jobTokenPurge   = "token_purge"
)

// Options configures a Scheduler. Zero values fall back to the defaults.
type Options struct {
	DueDateSweepSpec string
	TokenPurgeSpec   string
	Metrics          *metrics.Metrics
	Logger           *slog.Logger
	Now              func() time.Time
}

type Scheduler struct {
	cron     *cron.Cron
	tasks    repository.TaskRepository
	tokens   repository.InvalidTokenRepository
	notifier *services.NotificationService
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a scheduler and registers its jobs. Jobs do not run until Start.
func New(
	tasks repository.TaskRepository,
	tokens repository.InvalidTokenRepository,
	notifier *services.NotificationService,
	opts Options,
) (*Scheduler, error) {
	if opts.DueDateSweepSpec == "" {
		opts.DueDateSweepSpec = constants.DefaultDueDateSweepSpec
	}
	if opts.TokenPurgeSpec == "" {
		opts.TokenPurgeSpec = constants.DefaultTokenPurgeSpec
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cronLogger := cronLogger{logger: opts.Logger}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		tasks:    tasks,
		tokens:   tokens,
		notifier: notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
	}

	if _, err := s.cron.AddFunc(opts.DueDateSweepSpec, s.job(jobDueDateSweep, func(ctx context.Context) error {
		_, err := s.RunDueDateSweep(ctx)
		return err
	})); err != nil {
		return nil, fmt.Errorf("invalid due date sweep spec %q: %w", opts.DueDateSweepSpec, err)
	}

	if _, err := s.cron.AddFunc(opts.TokenPurgeSpec, s.job(jobTokenPurge, func(ctx context.Context) error {
		_, err := s.PurgeExpiredTokens(ctx)
		return err
	})); err != nil {
		return nil, fmt.Errorf("invalid token purge spec %q: %w", opts.TokenPurgeSpec, err)
	}

	return s, nil
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunDueDateSweep creates one reminder per pending, assigned task due within
// the next 24 hours. Running it twice creates duplicate reminders.
func (s *Scheduler) RunDueDateSweep(ctx context.Context) (int, error) {
	now := s.now()
	tasks, err := s.tasks.FindDueForReminder(ctx, now, now.Add(constants.DueDateReminderWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to find due tasks: %w", err)
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	reminders := make([]models.Notification, 0, len(tasks))
	for _, task := range tasks {
		reminders = append(reminders, models.Notification{
			UserID:  *task.AssignedTo,
			Message: ReminderMessage(task.Name),
		})
	}

	if err := s.notifier.Send(ctx, reminders); err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.RemindersCreated.Add(float64(len(reminders)))
	}
	s.logger.InfoContext(ctx, "due date reminders created", "count", len(reminders))
	return len(reminders), nil
}

// PurgeExpiredTokens deletes blocklist entries whose expiry has passed.
func (s *Scheduler) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TokensPurged.Add(float64(n))
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired tokens purged", "count", n)
	}
	return n, nil
}

// ReminderMessage is the notification text for a task due tomorrow.
func ReminderMessage(taskName string) string {
	return fmt.Sprintf("Reminder: Task '%s' is due tomorrow", taskName)
}

func (s *Scheduler) job(name string, run func(ctx context.Context) error) func() {
	return func() {
		start := time.Now()
		err := run(context.Background())

		result := "success"
		if err != nil {
			result = "error"
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		} else {
			s.logger.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
		}
		if s.metrics != nil {
			s.metrics.SchedulerRunsTotal.WithLabelValues(name, result).Inc()
		}
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
