package hub

import (
	"log/slog"
	"runtime/trace"
	"time"
)

// FireTimers runs timer entries that are due and returns how long the
// drive loop may wait before calling it again.
//
// When the scheduler has no pending work the hub's maximum delay is
// returned without touching the scheduler. Otherwise at most
// MaxTimers pairs are pulled. A wait hint ends the drain and its delay
// becomes the result. A due entry is called; if it fails and the
// Propagate predicate accepts the error, the error is returned at
// once, otherwise it is logged and the drain continues.
//
// The result is clamped to [MinDelay, MaxDelay], with MinDelay used
// when the drain saw no non-zero wait hint. ErrSchedulerExhausted is
// returned if the scheduler stream ends.
func (h *Hub) FireTimers(opts ...FireOption) (time.Duration, error) {
	cfg := h.fire
	for _, opt := range opts {
		opt(&cfg)
	}

	if h.scheduler == nil || !h.scheduler.Pending() {
		return cfg.maxDelay, nil
	}

	defer trace.StartRegion(h.ctx, hubTraceRegionType).End()

	var delay time.Duration
	for i := 0; i < cfg.maxTimers; i++ {
		due, ok := h.scheduler.Next()
		if !ok {
			return 0, ErrSchedulerExhausted
		}
		if due.Entry == nil {
			delay = due.Delay
			break
		}

		if err := due.Entry(); err != nil {
			if cfg.propagate != nil && cfg.propagate(err) {
				return 0, err
			}
			h.logger.LogAttrs(h.ctx, slog.LevelError, "timer entry failed",
				slog.Any("error", err),
			)
		}
	}

	h.Logf("FIRE_TIMERS DELAY %v", delay)
	return min(max(delay, cfg.minDelay), cfg.maxDelay), nil
}

// Timer returns the hub's scheduler if it is a *Timer.
func (h *Hub) Timer() (*Timer, bool) {
	t, ok := h.scheduler.(*Timer)
	return t, ok
}

// CallLater schedules fn on the hub's timer to run once after d.
func (h *Hub) CallLater(d time.Duration, fn func() error) (*Entry, error) {
	t, ok := h.Timer()
	if !ok {
		return nil, ErrNoTimer
	}
	return t.CallAfter(d, fn), nil
}

// CallAt schedules fn on the hub's timer to run at when.
func (h *Hub) CallAt(when time.Time, fn func() error) (*Entry, error) {
	t, ok := h.Timer()
	if !ok {
		return nil, ErrNoTimer
	}
	return t.CallAt(when, fn), nil
}

// CallRepeatedly schedules fn on the hub's timer to run every d.
func (h *Hub) CallRepeatedly(d time.Duration, fn func() error) (*Entry, error) {
	t, ok := h.Timer()
	if !ok {
		return nil, ErrNoTimer
	}
	return t.CallRepeatedly(d, fn), nil
}
