package hub

import "time"

// Event is one readiness notification returned by Poller.Poll.
type Event struct {
	FD    int  // Resolved file descriptor
	Flags Flag // Conditions the descriptor is ready for
}

// Poller is the OS readiness primitive driven by the hub. The hub
// only registers and unregisters descriptors; the drive loop calls
// Poll.
type Poller interface {
	// Register adds interest in flags for d. Registering a descriptor
	// that is already known merges the flag sets.
	Register(d Descriptor, flags Flag) error

	// Unregister drops all interest in d.
	Unregister(d Descriptor) error

	// Poll waits up to timeout for readiness. A negative timeout
	// blocks until at least one descriptor is ready.
	Poll(timeout time.Duration) ([]Event, error)

	// Close releases the OS resource behind the poller.
	Close() error
}

// PollerFactory creates pollers. The hub calls it on every Start.
type PollerFactory func() (Poller, error)

// NewPoller is the platform poller factory: epoll on Linux, kqueue on
// Darwin and the BSDs.
func NewPoller() (Poller, error) {
	return newPlatformPoller()
}

// pollEvents is the size of the event buffer handed to the kernel on
// each Poll.
const pollEvents = 128

// timeoutMillis converts a poll timeout to the millisecond form the
// kernel wants, rounding sub-millisecond waits up so they do not spin.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}
