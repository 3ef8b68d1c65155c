// internal/perf/stats.go
package perf

import (
	"math"
	"sort"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/executor"
)

// Sample is one recorded execution. Immutable once appended.
type Sample struct {
	Elapsed time.Duration
	Outcome executor.Outcome
	At      time.Time
}

// OK reports whether the sample succeeded.
func (s Sample) OK() bool { return s.Outcome == executor.Success }

// Summary is the running view published while a run is in progress.
type Summary struct {
	Count       int
	Mean        time.Duration
	Min         time.Duration
	Max         time.Duration
	SuccessRate float64 // percent
}

// Stats are the final statistics of a run.
type Stats struct {
	Summary

	Successes  int
	Failures   int // includes mismatches
	Mismatches int

	P95    time.Duration
	StdDev time.Duration // population
}

// Compute derives Stats from samples. ok is false for an empty set:
// there is no data, not zero data.
func Compute(samples []Sample) (st Stats, ok bool) {
	n := len(samples)
	if n == 0 {
		return Stats{}, false
	}

	var acc accumulator
	sorted := make([]time.Duration, n)
	for i, s := range samples {
		acc.add(s)
		sorted[i] = s.Elapsed
		if s.Outcome == executor.Mismatch {
			st.Mismatches++
		}
	}
	st.Summary, _ = acc.summary()
	st.Successes = acc.ok
	st.Failures = n - acc.ok

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Floor(0.95 * float64(n)))
	if idx > n-1 {
		idx = n - 1
	}
	st.P95 = sorted[idx]

	mean := float64(acc.sum) / float64(n)
	var sq float64
	for _, s := range samples {
		d := float64(s.Elapsed) - mean
		sq += d * d
	}
	st.StdDev = time.Duration(math.Round(math.Sqrt(sq / float64(n))))

	return st, true
}

// accumulator keeps running totals so progress is O(1) per sample.
type accumulator struct {
	n, ok    int
	sum      time.Duration
	min, max time.Duration
}

func (a *accumulator) add(s Sample) {
	if a.n == 0 || s.Elapsed < a.min {
		a.min = s.Elapsed
	}
	if a.n == 0 || s.Elapsed > a.max {
		a.max = s.Elapsed
	}
	a.n++
	a.sum += s.Elapsed
	if s.OK() {
		a.ok++
	}
}

func (a *accumulator) summary() (Summary, bool) {
	if a.n == 0 {
		return Summary{}, false
	}
	return Summary{
		Count:       a.n,
		Mean:        a.sum / time.Duration(a.n),
		Min:         a.min,
		Max:         a.max,
		SuccessRate: 100 * float64(a.ok) / float64(a.n),
	}, true
}
