package probe

import (
	"context"
	"net/url"
)

// Diagnoser explains why a target failed. Implementations must not affect
// the vote.
type Diagnoser interface {
	Diagnose(ctx context.Context, target string) string
}

// DNSDiagnoser reports the DNS class of a target's host. Behind a captive
// portal the gateway usually still answers DNS, so RESOLVES with a failed
// check points at the portal rather than the resolver.
type DNSDiagnoser struct{}

func NewDNSDiagnoser() *DNSDiagnoser {
	return &DNSDiagnoser{}
}

func (d *DNSDiagnoser) Diagnose(ctx context.Context, target string) string {
	return CheckDNS(ctx, extractHost(target)).Class
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
