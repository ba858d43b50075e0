// Package hub provides a single-threaded, callback-driven I/O reactor
// and a non-blocking bounded concurrency gate. Together they let one
// event loop thread multiplex many descriptors and timers without
// blocking, while limiting how much work is in flight without ever
// parking a caller.
//
// Key components:
//
//   - Hub: The reactor. It keeps reader and writer callback tables
//     keyed on file descriptors, keeps the poller's registrations in
//     step with them, drains due timers, and runs lifecycle hooks.
//     The drive loop that polls and dispatches lives outside the hub.
//
//   - Poller: The OS readiness primitive behind the hub. NewPoller
//     picks epoll on Linux and kqueue on Darwin and the BSDs.
//
//   - Scheduler/Timer: The timer source drained by Hub.FireTimers. A
//     Timer is a heap of entries exposed as an endless stream of
//     "fire now" entries and "wait this long" hints.
//
//   - LaxBoundedSemaphore: A counting gate whose Acquire either runs
//     the callback right away or queues it for a later Release. Its
//     counter is approximate by design.
//
//   - Descriptor: Anything that resolves to an integer file
//     descriptor, such as FD or File(*os.File).
//
// A typical drive loop:
//
//	delay, err := h.FireTimers()
//	events, err := h.Poller().Poll(delay)
//	for _, ev := range events {
//		cb := h.CallbackForOr(hub.FD(ev.FD), ev.Flags, nil)
//		if cb != nil {
//			cb(ev.FD, ev.Flags)
//		}
//	}
//	h.RunReady()
//
// Nothing in this package is safe for concurrent use.
package hub
