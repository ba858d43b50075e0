package hub

import (
	"fmt"

	"github.com/gammazero/deque"
)

// LaxBoundedSemaphore is a non-blocking counting gate for code
// running on a single event loop thread. Acquire never parks the
// caller: when no units are left the callback is queued and run later
// by Release.
//
// The counter is deliberately approximate. Release always nudges the
// value up toward the bound, even when it hands the freed unit
// straight to a queued waiter, so under sustained backlog Value is a
// gauge rather than an exact count of outstanding units. In exchange
// the oldest waiter always makes progress on every Release.
//
// The value is kept within [0, InitialValue] after every operation.
type LaxBoundedSemaphore struct {
	noCopy  noCopy              // Prevents copying of the semaphore
	value   int                 // Spendable units
	initial int                 // Current bound
	waiting deque.Deque[func()] // Deferred callbacks, oldest first
}

// NewLaxBoundedSemaphore returns a semaphore with n units available.
func NewLaxBoundedSemaphore(n int) *LaxBoundedSemaphore {
	n = max(n, 0)
	return &LaxBoundedSemaphore{value: n, initial: n}
}

// Acquire runs fn immediately and returns true if a unit was
// available. Otherwise fn is queued behind any earlier waiters and
// Acquire returns false. Arguments for fn are captured by the
// closure.
func (s *LaxBoundedSemaphore) Acquire(fn func()) bool {
	value := s.value
	s.value = max(value-1, 0)
	if value <= 0 {
		s.waiting.PushBack(fn)
		return false
	}

	fn()
	return true
}

// Release returns one unit, bounded by InitialValue, and then runs the
// oldest queued waiter, if any. Running the waiter does not consume
// the unit again.
func (s *LaxBoundedSemaphore) Release() {
	s.value = min(s.value+1, s.initial)
	if s.waiting.Len() == 0 {
		return
	}

	fn := s.waiting.PopFront()
	fn()
}

// Grow raises the bound and the value by n and then releases n times,
// waking up to n waiters in FIFO order.
func (s *LaxBoundedSemaphore) Grow(n int) {
	s.initial += n
	s.value += n
	for i := 0; i < n; i++ {
		s.Release()
	}
}

// Shrink lowers the bound and the value by n, floored at zero. Units
// already handed out and queued waiters are left alone.
func (s *LaxBoundedSemaphore) Shrink(n int) {
	s.initial = max(s.initial-n, 0)
	s.value = max(s.value-n, 0)
}

// Clear drops all queued waiters without running them and resets the
// value to the bound.
func (s *LaxBoundedSemaphore) Clear() {
	s.waiting.Clear()
	s.value = s.initial
}

// Value returns the number of units currently spendable.
func (s *LaxBoundedSemaphore) Value() int {
	return s.value
}

// InitialValue returns the current bound.
func (s *LaxBoundedSemaphore) InitialValue() int {
	return s.initial
}

// Waiting returns the number of queued waiters.
func (s *LaxBoundedSemaphore) Waiting() int {
	return s.waiting.Len()
}

func (s *LaxBoundedSemaphore) String() string {
	return fmt.Sprintf("LaxBoundedSemaphore(%d/%d waiting:%d)", s.value, s.initial, s.waiting.Len())
}
