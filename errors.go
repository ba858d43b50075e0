package hub

import "errors"

var (
	// ErrNoCallback is returned by CallbackFor when the descriptor
	// has no callback registered for the requested flag.
	ErrNoCallback = errors.New("hub: no callback registered")

	// ErrNoPoller is returned when a registration is attempted before
	// Start or after Stop.
	ErrNoPoller = errors.New("hub: no active poller")

	// ErrNoTimer is returned by the timer helpers when the hub's
	// scheduler is not a *Timer.
	ErrNoTimer = errors.New("hub: scheduler is not a timer")

	// ErrInvalidDescriptor marks registration failures caused by the
	// descriptor itself (closed, unsupported type). The hub discards
	// such descriptors instead of failing the whole batch.
	ErrInvalidDescriptor = errors.New("hub: invalid descriptor")

	// ErrPollerUnsupported is returned by NewPoller on platforms
	// without a readiness facility.
	ErrPollerUnsupported = errors.New("hub: no poller for this platform")

	// ErrSchedulerExhausted is returned by FireTimers when the
	// scheduler stream ends. Production schedulers never end, so
	// seeing this means a finite scheduler was plugged in.
	ErrSchedulerExhausted = errors.New("hub: scheduler exhausted")
)
