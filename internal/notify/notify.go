package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/hamed0406/campusnet/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// AttemptMessage renders a daemon attempt for a notification.
func AttemptMessage(host string, a domain.Attempt) (title, text string) {
	title = "🔴 campusnet " + string(a.Action) + " failed"
	if a.Outcome != domain.OutcomeFailed {
		title = "🟢 campusnet " + string(a.Action) + " recovered"
	}
	reason := a.Error
	if reason == "" {
		reason = "n/a"
	}
	text = fmt.Sprintf(
		"Host: %s\nOutcome: %s\nRounds: %d\nReason: %s\nTook: %s\nFinished: %s",
		host, a.Outcome, a.Rounds, reason, a.Duration().Round(time.Millisecond), a.FinishedAt.Format(time.RFC3339),
	)
	return title, text
}
