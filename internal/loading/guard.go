package loading

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Options configures a Guard
type Options struct {
	// MinDuration is the shortest time the flag stays set once started
	MinDuration time.Duration
	// Timeout clears the flag if Stop is never called. Zero disables it.
	Timeout time.Duration
	// Clock defaults to the wall clock
	Clock clock.Clock
	// OnChange is called after the observed flag flips
	OnChange func(loading bool)
	Log      *logrus.Entry
}

// Guard is a loading flag with a minimum-duration guarantee and a safety
// timeout
type Guard struct {
	mu        sync.Mutex
	opts      Options
	clock     clock.Clock
	log       *logrus.Entry
	loading   bool
	startedAt time.Time
	gen       uint64
	safety    *DelayedAction
	release   *DelayedAction
	lastRun   Run
}

// Run summarises the last start/stop cycle
type Run struct {
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	TimedOut  bool          `json:"timed_out"`
	Duration  time.Duration `json:"duration"`
}

// Status is a point-in-time view of a Guard
type Status struct {
	Loading   bool       `json:"loading"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	LastRun   *Run       `json:"last_run,omitempty"`
}

// NewGuard creates a Guard
func NewGuard(opts Options) *Guard {
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Guard{opts: opts, clock: c, log: log}
}

// Start sets the flag and arms the safety timeout. Starting again while
// loading restarts both timers.
func (g *Guard) Start() {
	g.mu.Lock()
	g.safety.Cancel()
	g.release.Cancel()
	g.release = nil
	g.gen++
	gen := g.gen
	g.startedAt = g.clock.Now()
	changed := g.set(true)
	if g.opts.Timeout > 0 {
		g.safety = After(g.clock, g.opts.Timeout, func() { g.expire(gen) })
	}
	g.mu.Unlock()

	g.notify(changed, true)
}

// Stop clears the flag, waiting out the rest of MinDuration if needed
func (g *Guard) Stop() {
	g.mu.Lock()
	if !g.loading || g.release != nil {
		g.mu.Unlock()
		return
	}
	g.safety.Cancel()
	g.safety = nil

	remaining := g.opts.MinDuration - g.clock.Now().Sub(g.startedAt)
	if remaining > 0 {
		gen := g.gen
		g.release = After(g.clock, remaining, func() { g.clear(gen, false) })
		g.mu.Unlock()
		return
	}
	changed := g.finish(false)
	g.mu.Unlock()

	g.notify(changed, false)
}

// Loading reports the externally observed flag
func (g *Guard) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

// Status returns the flag together with timing details
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Status{Loading: g.loading}
	if g.loading {
		started := g.startedAt
		s.StartedAt = &started
	}
	if !g.lastRun.EndedAt.IsZero() {
		last := g.lastRun
		s.LastRun = &last
	}
	return s
}

// Track runs fn between Start and Stop
func (g *Guard) Track(fn func() error) error {
	g.Start()
	defer g.Stop()
	return fn()
}

func (g *Guard) expire(gen uint64) {
	g.mu.Lock()
	if gen != g.gen || !g.loading {
		g.mu.Unlock()
		return
	}
	g.log.WithField("timeout", g.opts.Timeout.String()).Warn("Loading flag not cleared in time, resetting")
	g.release.Cancel()
	g.release = nil
	g.safety = nil
	changed := g.finish(true)
	g.mu.Unlock()

	g.notify(changed, false)
}

func (g *Guard) clear(gen uint64, timedOut bool) {
	g.mu.Lock()
	if gen != g.gen || !g.loading {
		g.mu.Unlock()
		return
	}
	g.release = nil
	changed := g.finish(timedOut)
	g.mu.Unlock()

	g.notify(changed, false)
}

// finish must be called with mu held
func (g *Guard) finish(timedOut bool) bool {
	now := g.clock.Now()
	g.lastRun = Run{
		StartedAt: g.startedAt,
		EndedAt:   now,
		TimedOut:  timedOut,
		Duration:  now.Sub(g.startedAt),
	}
	return g.set(false)
}

// set must be called with mu held
func (g *Guard) set(v bool) bool {
	if g.loading == v {
		return false
	}
	g.loading = v
	return true
}

func (g *Guard) notify(changed, v bool) {
	if changed && g.opts.OnChange != nil {
		g.opts.OnChange(v)
	}
}
