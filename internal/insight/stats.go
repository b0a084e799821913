package insight

import (
	"slices"
	"sync"
	"time"
)

type call struct {
	at       time.Time
	op       string
	duration time.Duration
	failed   bool
}

// OpStats aggregates calls of one operation.
type OpStats struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// StatsSnapshot is a point-in-time view of generator calls in the window.
type StatsSnapshot struct {
	Provider string             `json:"provider"`
	Window   string             `json:"window"`
	Total    OpStats            `json:"total"`
	ByOp     map[string]OpStats `json:"by_operation"`
}

// Stats keeps a rolling window of generator call latencies and failures.
type Stats struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
	now    func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds one call outcome.
func (s *Stats) Record(op string, d time.Duration, err error) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.calls = append(s.calls, call{at: now, op: op, duration: d, failed: err != nil})
}

func (s *Stats) Snapshot(provider string) StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())

	byOp := make(map[string][]call)
	for _, c := range s.calls {
		byOp[c.op] = append(byOp[c.op], c)
	}
	snap := StatsSnapshot{
		Provider: provider,
		Window:   s.window.String(),
		Total:    aggregate(s.calls),
		ByOp:     make(map[string]OpStats, len(byOp)),
	}
	for op, calls := range byOp {
		snap.ByOp[op] = aggregate(calls)
	}
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.calls = slices.DeleteFunc(s.calls, func(c call) bool { return c.at.Before(cutoff) })
}

func aggregate(calls []call) OpStats {
	if len(calls) == 0 {
		return OpStats{}
	}
	ms := make([]float64, len(calls))
	var sum float64
	errs := 0
	for i, c := range calls {
		ms[i] = float64(c.duration.Microseconds()) / 1000
		sum += ms[i]
		if c.failed {
			errs++
		}
	}
	slices.Sort(ms)
	return OpStats{
		Count:  len(calls),
		Errors: errs,
		AvgMs:  sum / float64(len(ms)),
		P50Ms:  percentile(ms, 50),
		P95Ms:  percentile(ms, 95),
		MaxMs:  ms[len(ms)-1],
	}
}

// percentile interpolates linearly between closest ranks of sorted values.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := float64(len(sorted)-1) * pct / 100
	lo := int(idx)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	w := idx - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*w
}
