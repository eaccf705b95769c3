package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sergiovidalh/recluta/internal/services"
	"github.com/sergiovidalh/recluta/pkg/logger"
)

const (
	defaultRetentionDays = 90
	defaultPurgeSpec     = "@daily"
)

// Cleaner periodically purges read notifications past their retention window.
type Cleaner struct {
	notifier  *services.NotificationService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int
	schedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays adjusts how long read notifications are retained.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for the purge sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil notification
// service disables the sweep.
func NewCleaner(notifier *services.NotificationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		notifier:  notifier,
		now:       time.Now,
		retention: defaultRetentionDays,
		schedule:  defaultPurgeSpec,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.notifier == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("notification purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the purge immediately. Used by tests and during shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c.notifier == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := c.now().UTC().AddDate(0, 0, -c.retention)
	removed, err := c.notifier.PurgeRead(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		c.log.Info("purged read notifications",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
