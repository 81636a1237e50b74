package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/campusnet/internal/domain"
	"github.com/hamed0406/campusnet/internal/notify"
	"github.com/hamed0406/campusnet/internal/repo"
	"github.com/hamed0406/campusnet/internal/session"
)

// Runner performs one login or logout.
type Runner interface {
	Run(ctx context.Context, action domain.Action) session.Result
}

// Daemon re-applies an action every interval, records each attempt and
// notifies when the outcome flips between failed and not failed.
type Daemon struct {
	Logger   *zap.Logger
	Runner   Runner
	Action   domain.Action
	Interval time.Duration
	Attempts repo.AttemptStore
	Notifier notify.Notifier
	Host     string

	seen       bool
	lastFailed bool
}

func NewDaemon(
	logger *zap.Logger,
	runner Runner,
	action domain.Action,
	interval time.Duration,
	attempts repo.AttemptStore,
	notifier notify.Notifier,
) *Daemon {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Daemon{
		Logger:   logger,
		Runner:   runner,
		Action:   action,
		Interval: interval,
		Attempts: attempts,
		Notifier: notifier,
	}
}

// Run does an immediate pass, then one per tick. Passes never overlap; a
// tick that fires during a slow pass is dropped. Stops when ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) {
	t := time.NewTicker(d.Interval)
	defer t.Stop()

	d.Logger.Info("daemon_started",
		zap.String("action", string(d.Action)),
		zap.Duration("interval", d.Interval),
	)

	// immediate pass
	d.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			d.Logger.Info("daemon_stopped")
			return
		case <-t.C:
			d.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single pass and returns its record.
func (d *Daemon) RunOnce(ctx context.Context) domain.Attempt {
	started := time.Now()
	res := d.Runner.Run(ctx, d.Action)
	a := res.Attempt(started, time.Now())

	if d.Attempts != nil {
		if err := d.Attempts.Append(ctx, &a); err != nil {
			d.Logger.Warn("daemon_record_error", zap.Error(err))
		}
	}
	d.notify(ctx, a)
	return a
}

func (d *Daemon) notify(ctx context.Context, a domain.Attempt) {
	failed := a.Outcome == domain.OutcomeFailed
	changed := (!d.seen && failed) || (d.seen && failed != d.lastFailed)
	d.seen = true
	d.lastFailed = failed
	if !changed || d.Notifier == nil || ctx.Err() != nil {
		return
	}

	title, text := notify.AttemptMessage(d.Host, a)
	if err := d.Notifier.Send(ctx, title, text); err != nil {
		d.Logger.Warn("daemon_notify_error", zap.Error(err))
	}
}
