package hub

import (
	"context"
	"log/slog"
	"time"
)

const (
	// FireTimersMinDelay is the default lower bound on the delay
	// returned by FireTimers.
	FireTimersMinDelay = time.Second

	// FireTimersMaxDelay is the default upper bound on the delay
	// returned by FireTimers.
	FireTimersMaxDelay = 10 * time.Second

	// FireTimersMaxTimers is the default number of scheduler pairs
	// pulled by one FireTimers call.
	FireTimersMaxTimers = 10
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger used for swallowed timer failures. The
// default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithPollerFactory replaces NewPoller as the source of pollers for
// Start.
func WithPollerFactory(factory PollerFactory) Option {
	return func(h *Hub) {
		h.factory = factory
	}
}

// WithScheduler replaces the hub's default Timer.
func WithScheduler(s Scheduler) Option {
	return func(h *Hub) {
		h.scheduler = s
	}
}

// WithContext sets the parent context for the hub's trace task and
// log records.
func WithContext(ctx context.Context) Option {
	return func(h *Hub) {
		h.base = ctx
	}
}

// WithTimerLimits sets the defaults used by FireTimers.
func WithTimerLimits(minDelay, maxDelay time.Duration, maxTimers int) Option {
	return func(h *Hub) {
		h.fire.minDelay = minDelay
		h.fire.maxDelay = maxDelay
		h.fire.maxTimers = maxTimers
	}
}

// fireConfig holds the limits for one FireTimers call.
type fireConfig struct {
	minDelay  time.Duration
	maxDelay  time.Duration
	maxTimers int
	propagate func(error) bool
}

// FireOption overrides a hub default for a single FireTimers call.
type FireOption func(*fireConfig)

// MinDelay sets the lower bound on the returned delay.
func MinDelay(d time.Duration) FireOption {
	return func(c *fireConfig) {
		c.minDelay = d
	}
}

// MaxDelay sets the upper bound on the returned delay. It is also the
// delay returned when no timer work is pending.
func MaxDelay(d time.Duration) FireOption {
	return func(c *fireConfig) {
		c.maxDelay = d
	}
}

// MaxTimers sets how many scheduler pairs one call may pull.
func MaxTimers(n int) FireOption {
	return func(c *fireConfig) {
		c.maxTimers = n
	}
}

// Propagate sets the predicate deciding which entry errors abort the
// drain and are returned to the caller. Errors it rejects are logged
// and the drain goes on.
func Propagate(fatal func(error) bool) FireOption {
	return func(c *fireConfig) {
		c.propagate = fatal
	}
}
