package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fake checker you can control
type fakeChecker struct {
	results []bool
	i       int
	seen    []string
}

func (f *fakeChecker) Check(ctx context.Context, target string) CheckResult {
	f.seen = append(f.seen, target)
	if f.i >= len(f.results) {
		return CheckResult{Target: target, Success: false, Message: "no more"}
	}
	ok := f.results[f.i]
	f.i++
	return CheckResult{Target: target, Success: ok}
}

func urls(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("http://probe-%d.example", i)
	}
	return out
}

func repeat(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newTestProber(t *testing.T, chk Checker, targets []string, ratio float64) *Prober {
	t.Helper()
	p, err := NewProber(nil, chk, targets, ratio)
	if err != nil {
		t.Fatalf("NewProber: %v", err)
	}
	return p
}

func TestThresholds_SumToN(t *testing.T) {
	ratios := []float64{0.01, 0.1, 0.25, 0.3, 0.4, 0.5, 0.6, 0.7, 0.75, 0.9, 0.99, 1}
	for n := 0; n <= 40; n++ {
		for _, r := range ratios {
			pass, fail := Thresholds(n, r)
			if pass+fail != n {
				t.Fatalf("n=%d ratio=%v: pass %d + fail %d != n", n, r, pass, fail)
			}
			if pass < 0 || fail < 0 {
				t.Fatalf("n=%d ratio=%v: negative tally %d/%d", n, r, pass, fail)
			}
		}
	}
}

func TestThresholds_Known(t *testing.T) {
	cases := []struct {
		n          int
		ratio      float64
		pass, fail int
	}{
		{12, 0.6, 7, 5},
		{5, 0.4, 2, 3},
		{10, 0.7, 7, 3},
		{10, 0.3, 3, 7},
		{3, 1, 3, 0},
		{1, 0.5, 0, 1},
		{100, 0.29, 28, 72},
		{100, 0.57, 56, 44},
		{100, 0.58, 57, 43},
	}
	for _, c := range cases {
		pass, fail := Thresholds(c.n, c.ratio)
		if pass != c.pass || fail != c.fail {
			t.Fatalf("Thresholds(%d, %v) = %d/%d, want %d/%d", c.n, c.ratio, pass, fail, c.pass, c.fail)
		}
	}
}

func TestNewProber_RejectsBadRatio(t *testing.T) {
	for _, r := range []float64{0, -0.5, 1.01} {
		if _, err := NewProber(nil, &fakeChecker{}, urls(3), r); !errors.Is(err, ErrPassRatio) {
			t.Fatalf("ratio %v: want ErrPassRatio, got %v", r, err)
		}
	}
}

func TestProber_AllSucceedStopsAtPassCount(t *testing.T) {
	f := &fakeChecker{results: repeat(true, 12)}
	p := newTestProber(t, f, urls(12), 0.6)

	v := p.Check(context.Background())
	if !v.Online {
		t.Fatalf("want online, got %+v", v)
	}
	if v.Checked != 7 || len(f.seen) != 7 {
		t.Fatalf("want exactly 7 checks, got %d (%d seen)", v.Checked, len(f.seen))
	}
}

func TestProber_AllFailStopsAtFailCount(t *testing.T) {
	f := &fakeChecker{results: repeat(false, 12)}
	p := newTestProber(t, f, urls(12), 0.6)

	v := p.Check(context.Background())
	if v.Online {
		t.Fatalf("want offline, got %+v", v)
	}
	if v.Checked != 5 {
		t.Fatalf("want exactly 5 checks, got %d", v.Checked)
	}
}

func TestProber_AlternatingTerminatesOnTally(t *testing.T) {
	alt := make([]bool, 12)
	for i := range alt {
		alt[i] = i%2 == 0
	}
	f := &fakeChecker{results: alt}
	p := newTestProber(t, f, urls(12), 0.6)

	v := p.Check(context.Background())
	// S F S F S F S F S F -> fifth failure lands on check 10 before a seventh success
	if v.Online {
		t.Fatalf("want offline, got %+v", v)
	}
	if v.Checked != 10 || v.Failed != v.FailCount || v.Passed != 5 {
		t.Fatalf("unexpected tallies: %+v", v)
	}
	if v.Checked > len(p.Targets) {
		t.Fatalf("checked more than N: %d", v.Checked)
	}
}

func TestProber_SplitVoteDecidedOnLastPossibleCheck(t *testing.T) {
	// 6 passes or 4 failures out of 10; 5 pass, 3 fail, then the deciding pass.
	res := append(repeat(true, 5), repeat(false, 3)...)
	res = append(res, true, true)
	f := &fakeChecker{results: res}
	p := newTestProber(t, f, urls(10), 0.6)
	p.Shuffle = func([]string) {}

	v := p.Check(context.Background())
	if !v.Online || v.Checked != 9 {
		t.Fatalf("want online after 9 checks, got %+v", v)
	}
}

func TestProber_FullRatioNeedsEverySuccess(t *testing.T) {
	f := &fakeChecker{results: []bool{true, true, false}}
	p := newTestProber(t, f, urls(3), 1)
	if p.Online(context.Background()) {
		t.Fatalf("one failure must make a ratio of 1 fail")
	}
	if len(f.seen) != 3 {
		t.Fatalf("want 3 checks, got %d", len(f.seen))
	}

	f = &fakeChecker{results: repeat(true, 3)}
	p = newTestProber(t, f, urls(3), 1)
	if !p.Online(context.Background()) {
		t.Fatalf("want online when every target answers")
	}
}

func TestProber_ZeroPassCountIsVacuouslyOnline(t *testing.T) {
	f := &fakeChecker{}
	p := newTestProber(t, f, urls(1), 0.5)

	v := p.Check(context.Background())
	if !v.Online {
		t.Fatalf("want online, got %+v", v)
	}
	if len(f.seen) != 0 {
		t.Fatalf("want no requests, got %d", len(f.seen))
	}

	empty := newTestProber(t, f, nil, 0.5)
	if !empty.Online(context.Background()) || len(f.seen) != 0 {
		t.Fatalf("empty list should be online without requests")
	}
}

func TestProber_ShufflesCopyNotTargets(t *testing.T) {
	f := &fakeChecker{results: repeat(true, 4)}
	targets := urls(4)
	p := newTestProber(t, f, targets, 1)
	p.Shuffle = func(s []string) {
		for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
			s[i], s[j] = s[j], s[i]
		}
	}

	p.Check(context.Background())
	if f.seen[0] != targets[3] {
		t.Fatalf("want reversed order, first seen %q", f.seen[0])
	}
	if p.Targets[0] != targets[0] {
		t.Fatalf("configured targets were reordered")
	}
}

type countingDiagnoser struct{ n int }

func (d *countingDiagnoser) Diagnose(ctx context.Context, target string) string {
	d.n++
	return DNSResolves
}

func TestProber_DiagnosesOnlyFailures(t *testing.T) {
	f := &fakeChecker{results: []bool{false, true, true}}
	d := &countingDiagnoser{}
	p := newTestProber(t, f, urls(3), 0.6)
	p.Diagnoser = d
	p.Shuffle = func([]string) {}

	if !p.Online(context.Background()) {
		t.Fatalf("want online")
	}
	if d.n != 1 {
		t.Fatalf("want one diagnosis, got %d", d.n)
	}
}

func TestProbe_AgainstHTTPServers(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	downURL := down.URL
	down.Close()

	ok, err := Probe(context.Background(), []string{up.URL, up.URL, downURL}, 0.6, time.Second)
	if err != nil || !ok {
		t.Fatalf("want online, got %v err=%v", ok, err)
	}
	ok, err = Probe(context.Background(), []string{downURL, downURL, up.URL}, 1, time.Second)
	if err != nil || ok {
		t.Fatalf("want offline, got %v err=%v", ok, err)
	}
}
