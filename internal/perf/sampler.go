// internal/perf/sampler.go
package perf

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/tmrobot-sim/internal/executor"
)

// Executor runs one timed test.
type Executor interface {
	Execute(kind executor.TestKind) executor.Result
}

// State of the sampler.
type State uint8

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Event is posted to the observer after every sample and once at the end.
type Event struct {
	RunID string
	Done  int
	Total int

	// Running is valid when Done > 0.
	Running Summary

	// Final events carry the terminal state and, if any samples exist, Stats.
	Final    bool
	State    State
	Stats    Stats
	HasStats bool
}

// Run is one configured execution and its samples.
type Run struct {
	ID      string
	Config  Config
	Started time.Time
	Samples []Sample
}

// Sampler drives an Executor in a paced, cancellable loop on its own goroutine.
// Results are posted to the observer channel; the caller owns the channel and
// should drain it (or buffer it) until a Final event arrives.
type Sampler struct {
	exec Executor
	out  chan<- Event
	log  *slog.Logger

	mu     sync.Mutex
	state  State
	run    *Run
	cancel context.CancelFunc
	done   chan struct{}

	// release is closed by Stop or the next Start; a pending final
	// delivery gives up once it is closed.
	release  chan struct{}
	released bool
}

// NewSampler creates an idle sampler. out may be nil when nobody observes.
func NewSampler(exec Executor, out chan<- Event, log *slog.Logger) *Sampler {
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{
		exec: exec,
		out:  out,
		log:  log.With("component", "perf"),
	}
}

// Start begins a run. It is a no-op while a run is in progress.
// Previous samples are discarded. Invalid configs never start.
func (s *Sampler) Start(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		s.log.Warn("run already in progress", "run_id", s.run.ID)
		return nil
	}

	run := &Run{
		ID:      uuid.NewString(),
		Config:  cfg,
		Started: time.Now(),
		Samples: make([]Sample, 0, cfg.Count),
	}
	loopCtx, cancel := context.WithCancel(ctx)

	s.releaseLocked()

	s.run = run
	s.state = Running
	s.cancel = cancel
	s.done = make(chan struct{})
	s.release = make(chan struct{})
	s.released = false

	s.log.Info("run started",
		"run_id", run.ID, "test", cfg.Test, "count", cfg.Count,
		"interval", cfg.Interval, "stress", cfg.StressMode())

	go s.loop(ctx, loopCtx, run, s.done, s.release)
	return nil
}

// Stop requests cancellation. An in-flight request always finishes first.
// After Stop the final event is only delivered to an observer that is
// receiving; Done closes regardless. Safe to call at any time.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.releaseLocked()
}

func (s *Sampler) releaseLocked() {
	if s.release != nil && !s.released {
		close(s.release)
		s.released = true
	}
}

var closedCh = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Done is closed when the current run has ended. It is closed already when idle.
func (s *Sampler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return closedCh
	}
	return s.done
}

// Wait blocks until the current run (if any) has ended.
func (s *Sampler) Wait() {
	<-s.Done()
}

func (s *Sampler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Samples returns a copy of the current run's samples.
func (s *Sampler) Samples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil
	}
	out := make([]Sample, len(s.run.Samples))
	copy(out, s.run.Samples)
	return out
}

// Stats computes statistics over the current samples. ok is false with no data.
func (s *Sampler) Stats() (Stats, bool) {
	return Compute(s.Samples())
}

// Report snapshots the current run. ok is false before the first run.
func (s *Sampler) Report() (Report, bool) {
	s.mu.Lock()
	if s.run == nil {
		s.mu.Unlock()
		return Report{}, false
	}
	r := Report{
		RunID:   s.run.ID,
		Config:  s.run.Config,
		Started: s.run.Started,
		State:   s.state,
		Samples: append([]Sample(nil), s.run.Samples...),
	}
	s.mu.Unlock()

	r.Stats, r.HasStats = Compute(r.Samples)
	return r, true
}

func (s *Sampler) loop(parent, ctx context.Context, run *Run, done, release chan struct{}) {
	cfg := run.Config
	final := Completed
	var acc accumulator

	for i := 0; i < cfg.Count; i++ {
		if ctx.Err() != nil {
			final = Cancelled
			break
		}

		res := s.exec.Execute(cfg.Test)
		sample := Sample{Elapsed: res.Elapsed, Outcome: res.Outcome, At: time.Now()}

		s.mu.Lock()
		run.Samples = append(run.Samples, sample)
		s.mu.Unlock()

		acc.add(sample)
		sum, _ := acc.summary()
		s.publish(ctx, Event{RunID: run.ID, Done: i + 1, Total: cfg.Count, Running: sum})

		if i < cfg.Count-1 && cfg.Interval > 0 {
			if !sleep(ctx, cfg.Interval) {
				final = Cancelled
				break
			}
		}
	}

	s.mu.Lock()
	s.state = final
	s.cancel()
	s.cancel = nil
	n := len(run.Samples)
	s.mu.Unlock()

	ev := Event{RunID: run.ID, Done: n, Total: cfg.Count, Final: true, State: final}
	ev.Running, _ = acc.summary()
	ev.Stats, ev.HasStats = Compute(run.Samples)

	s.log.Info("run finished", "run_id", run.ID, "state", final, "samples", n)

	close(done)

	if s.out == nil {
		return
	}
	select {
	case s.out <- ev:
		return
	default:
	}
	select {
	case s.out <- ev:
	case <-parent.Done():
	case <-release:
	}
}

// publish hands ev to the observer unless ctx ends first.
func (s *Sampler) publish(ctx context.Context, ev Event) {
	if s.out == nil {
		return
	}
	select {
	case s.out <- ev:
	case <-ctx.Done():
	}
}

// sleep waits d or until ctx ends. It reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
