package probe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

var ErrPassRatio = errors.New("pass ratio must be in (0, 1]")

// Verdict is the result of one sampling run over the targets.
type Verdict struct {
	Online    bool
	Checked   int
	Passed    int
	Failed    int
	PassCount int
	FailCount int
}

// Thresholds returns the number of successes that decide "online" and the
// number of failures that decide "offline" for n targets. The two always sum
// to n.
func Thresholds(n int, passRatio float64) (pass, fail int) {
	if n <= 0 {
		return 0, 0
	}
	// plain float64 floor: 0.29*100 gives 28
	pass = int(math.Floor(passRatio * float64(n)))
	if pass < 0 {
		pass = 0
	}
	if pass > n {
		pass = n
	}
	return pass, n - pass
}

// Prober decides whether the internet is reachable by checking the targets
// one at a time in random order and stopping as soon as either tally is hit.
type Prober struct {
	Logger    *zap.Logger
	Checker   Checker
	Targets   []string
	PassRatio float64
	Diagnoser Diagnoser
	Shuffle   func([]string)
}

func NewProber(logger *zap.Logger, checker Checker, targets []string, passRatio float64) (*Prober, error) {
	if passRatio <= 0 || passRatio > 1 || math.IsNaN(passRatio) {
		return nil, fmt.Errorf("%w: got %v", ErrPassRatio, passRatio)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ts := make([]string, len(targets))
	copy(ts, targets)
	return &Prober{
		Logger:    logger,
		Checker:   checker,
		Targets:   ts,
		PassRatio: passRatio,
	}, nil
}

// Online reports the reachability verdict.
func (p *Prober) Online(ctx context.Context) bool {
	return p.Check(ctx).Online
}

// Check runs one early-exit vote. With a pass count of zero the verdict is
// online and no request is made.
func (p *Prober) Check(ctx context.Context) Verdict {
	order := make([]string, len(p.Targets))
	copy(order, p.Targets)
	p.shuffle(order)

	var v Verdict
	v.PassCount, v.FailCount = Thresholds(len(order), p.PassRatio)
	if v.PassCount == 0 {
		v.Online = true
		return v
	}

	for _, target := range order {
		out := p.Checker.Check(ctx, target)
		v.Checked++
		if out.Success {
			v.Passed++
		} else {
			v.Failed++
		}
		p.Logger.Debug("probe_checked",
			zap.String("url", target),
			zap.Bool("up", out.Success),
			zap.Int("status", out.StatusCode),
			zap.Float64("latency_ms", out.LatencyMS),
			zap.String("reason", out.Message),
		)
		if !out.Success && p.Diagnoser != nil {
			p.Logger.Debug("probe_diagnosis",
				zap.String("url", target),
				zap.String("dns", p.Diagnoser.Diagnose(ctx, target)),
			)
		}

		if v.Passed >= v.PassCount {
			v.Online = true
			break
		}
		if !out.Success && v.Failed >= v.FailCount {
			break
		}
	}

	p.Logger.Debug("probe_verdict",
		zap.Bool("online", v.Online),
		zap.Int("checked", v.Checked),
		zap.Int("passed", v.Passed),
		zap.Int("failed", v.Failed),
	)
	return v
}

func (p *Prober) shuffle(s []string) {
	if p.Shuffle != nil {
		p.Shuffle(s)
		return
	}
	rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// Probe is the one-shot form: shuffle urls, check each with an HTTP GET
// bounded by timeout and vote with passRatio.
func Probe(ctx context.Context, urls []string, passRatio float64, timeout time.Duration) (bool, error) {
	p, err := NewProber(nil, NewHTTPChecker(timeout), urls, passRatio)
	if err != nil {
		return false, err
	}
	return p.Online(ctx), nil
}
