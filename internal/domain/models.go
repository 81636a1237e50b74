package domain

import "time"

type Action string

const (
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// WantOnline is the reachability the action is meant to produce.
func (a Action) WantOnline() bool { return a == ActionLogin }

type Outcome string

const (
	OutcomeNoOp    Outcome = "noop"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Attempt records one login/logout run, including every retry round.
type Attempt struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	Outcome    Outcome   `json:"outcome"`
	Rounds     int       `json:"rounds"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (a Attempt) Duration() time.Duration {
	if a.FinishedAt.Before(a.StartedAt) {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}
