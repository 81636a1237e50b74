package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/campusnet/internal/domain"
	"github.com/hamed0406/campusnet/internal/portal"
)

// Prober reports whether the internet is reachable right now.
type Prober interface {
	Online(ctx context.Context) bool
}

// Submitter sends the portal form.
type Submitter interface {
	Submit(ctx context.Context, data portal.PostData) (int, error)
}

// RetryFunc is asked after a round whose verification failed. rounds is the
// number of rounds run so far. Returning false ends the run as failed.
type RetryFunc func(ctx context.Context, action domain.Action, rounds int) bool

type Result struct {
	Action  domain.Action
	Outcome domain.Outcome
	Rounds  int
	Err     error // last portal error, or the context error on cancellation
}

// Controller drives login and logout: probe, post when needed, probe again,
// and optionally go round again.
type Controller struct {
	Logger *zap.Logger
	Prober Prober
	Portal Submitter
	Data   portal.PostData
	Out    io.Writer

	// Retry nil disables retries (daemon mode).
	Retry RetryFunc
	// MaxRounds caps the rounds per run; 0 leaves it to Retry.
	MaxRounds int
}

func New(logger *zap.Logger, prober Prober, sub Submitter, data portal.PostData, out io.Writer) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Controller{
		Logger: logger,
		Prober: prober,
		Portal: sub,
		Data:   data,
		Out:    out,
	}
}

func (c *Controller) Login(ctx context.Context) Result {
	return c.Run(ctx, domain.ActionLogin)
}

func (c *Controller) Logout(ctx context.Context) Result {
	return c.Run(ctx, domain.ActionLogout)
}

// Run performs action. The portal is never trusted: only the second probe
// decides success.
func (c *Controller) Run(ctx context.Context, action domain.Action) Result {
	want := action.WantOnline()
	res := Result{Action: action}

	for {
		if err := ctx.Err(); err != nil {
			res.Outcome = domain.OutcomeFailed
			res.Err = err
			return c.finish(res)
		}
		res.Rounds++

		if c.Prober.Online(ctx) == want {
			// checked at the start of every round, retries included
			fmt.Fprintln(c.Out, noOpMessage(action))
			res.Outcome = domain.OutcomeNoOp
			res.Err = nil
			return c.finish(res)
		}

		status, err := c.Portal.Submit(ctx, c.Data)
		if err != nil {
			res.Err = err
			c.Logger.Warn("portal_submit_error",
				zap.String("action", string(action)),
				zap.Int("round", res.Rounds),
				zap.Error(err),
			)
		} else {
			c.Logger.Debug("portal_submit",
				zap.String("action", string(action)),
				zap.Int("round", res.Rounds),
				zap.Int("status", status),
			)
		}

		if c.Prober.Online(ctx) == want {
			fmt.Fprintln(c.Out, "Success!")
			res.Outcome = domain.OutcomeSuccess
			res.Err = nil
			return c.finish(res)
		}

		fmt.Fprintln(c.Out, "Failed! please re-check the username and password")
		if !c.retry(ctx, action, res.Rounds) {
			res.Outcome = domain.OutcomeFailed
			if err := ctx.Err(); err != nil {
				res.Err = err
			}
			return c.finish(res)
		}
	}
}

func (c *Controller) retry(ctx context.Context, action domain.Action, rounds int) bool {
	if c.Retry == nil {
		return false
	}
	if c.MaxRounds > 0 && rounds >= c.MaxRounds {
		c.Logger.Info("session_retry_limit", zap.Int("rounds", rounds))
		return false
	}
	return c.Retry(ctx, action, rounds)
}

func (c *Controller) finish(res Result) Result {
	fields := []zap.Field{
		zap.String("action", string(res.Action)),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("rounds", res.Rounds),
		zap.String("username", c.Data.Username()),
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	c.Logger.Info("session_result", fields...)
	return res
}

func noOpMessage(action domain.Action) string {
	if action.WantOnline() {
		return "Internet is already on, no ops."
	}
	return "Internet is already off, no ops."
}

// Attempt converts the result into a history record.
func (r Result) Attempt(started, finished time.Time) domain.Attempt {
	a := domain.Attempt{
		Action:     r.Action,
		Outcome:    r.Outcome,
		Rounds:     r.Rounds,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
	}
	if r.Err != nil {
		a.Error = r.Err.Error()
	}
	return a
}
