package probe

import "context"

// CheckResult is the outcome of a single reachability check.
//
// Fields:
// - StatusCode: HTTP status code when a response arrived; 0 for transport errors.
// - Message: response status line, or the transport error text.
type CheckResult struct {
	Target     string
	Success    bool
	LatencyMS  float64
	Message    string
	StatusCode int
}

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
