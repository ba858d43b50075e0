package hub

import (
	"container/heap"
	"time"

	"github.com/webriots/coro"
)

const (
	// TimerMaxInterval is the default upper bound on wait hints
	// produced by a Timer.
	TimerMaxInterval = 2 * time.Second
)

// Due is one pair pulled from a Scheduler. A non-nil Entry is due
// now and should be called. A nil Entry is a wait hint: nothing is
// due and Delay is how long until something might be.
type Due struct {
	Delay time.Duration
	Entry func() error
}

// Scheduler is the timer source drained by Hub.FireTimers.
//
// Implementations used in production must never exhaust: Next must
// keep producing pairs, yielding wait hints when nothing is due. A
// Next that returns false is reported by the hub as
// ErrSchedulerExhausted.
type Scheduler interface {
	// Pending reports whether the scheduler holds any work at all.
	Pending() bool

	// Next pulls the next due entry or wait hint.
	Next() (Due, bool)
}

// Entry is a scheduled call owned by a Timer.
type Entry struct {
	fn       func() error
	when     time.Time
	interval time.Duration
	canceled bool
	seq      uint64
	index    int
	timer    *Timer
}

// Cancel marks the entry so the timer skips it. A repeating entry
// stops re-arming itself.
func (e *Entry) Cancel() {
	e.canceled = true
}

// Canceled reports whether Cancel was called.
func (e *Entry) Canceled() bool {
	return e.canceled
}

// When returns the time the entry is next due.
func (e *Entry) When() time.Time {
	return e.when
}

func (e *Entry) call() error {
	if e.interval <= 0 {
		return e.fn()
	}

	defer func() {
		if !e.canceled {
			e.timer.enter(e, e.timer.now().Add(e.interval))
		}
	}()
	return e.fn()
}

// entryQueue orders entries by due time, then by insertion order.
type entryQueue []*Entry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].seq < q[j].seq
	}
	return q[i].when.Before(q[j].when)
}

func (q entryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *entryQueue) Push(x any) {
	e := x.(*Entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithClock replaces the time source, mostly for tests.
func WithClock(now func() time.Time) TimerOption {
	return func(t *Timer) {
		t.now = now
	}
}

// WithMaxInterval caps the delay carried by wait hints.
func WithMaxInterval(d time.Duration) TimerOption {
	return func(t *Timer) {
		t.maxInterval = d
	}
}

// Timer is a heap of scheduled entries exposed to the hub as an
// inexhaustible Scheduler. Like the hub it is meant to be used from a
// single thread.
type Timer struct {
	noCopy      noCopy
	queue       entryQueue
	seq         uint64
	now         func() time.Time
	maxInterval time.Duration
	resume      func(struct{}) (Due, bool)
	cancel      func()
}

// NewTimer returns an empty timer.
func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{
		now:         time.Now,
		maxInterval: TimerMaxInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CallAt schedules fn to run at when.
func (t *Timer) CallAt(when time.Time, fn func() error) *Entry {
	return t.enter(&Entry{fn: fn, timer: t}, when)
}

// CallAfter schedules fn to run once d from now.
func (t *Timer) CallAfter(d time.Duration, fn func() error) *Entry {
	return t.CallAt(t.now().Add(d), fn)
}

// CallRepeatedly schedules fn to run every d, starting d from now.
// The entry re-arms itself after each run, whether or not fn fails,
// until it is canceled.
func (t *Timer) CallRepeatedly(d time.Duration, fn func() error) *Entry {
	e := &Entry{fn: fn, interval: d, timer: t}
	return t.enter(e, t.now().Add(d))
}

// Enter schedules an existing entry at when. Canceled entries are
// revived.
func (t *Timer) Enter(e *Entry, when time.Time) *Entry {
	e.canceled = false
	if e.timer == t && e.index >= 0 && e.index < len(t.queue) && t.queue[e.index] == e {
		t.seq++
		e.when = when
		e.seq = t.seq
		heap.Fix(&t.queue, e.index)
		return e
	}
	e.timer = t
	return t.enter(e, when)
}

func (t *Timer) enter(e *Entry, when time.Time) *Entry {
	t.seq++
	e.when = when
	e.seq = t.seq
	heap.Push(&t.queue, e)
	return e
}

// Cancel cancels e. It is the same as e.Cancel.
func (t *Timer) Cancel(e *Entry) {
	e.Cancel()
}

// Clear drops every scheduled entry.
func (t *Timer) Clear() {
	for _, e := range t.queue {
		e.index = -1
	}
	t.queue = nil
}

// Len returns the number of scheduled entries, canceled ones
// included until the stream skips them.
func (t *Timer) Len() int {
	return len(t.queue)
}

// Pending implements Scheduler.
func (t *Timer) Pending() bool {
	return len(t.queue) > 0
}

// Next implements Scheduler. The stream is a coroutine that never
// returns, so Next always reports true while the timer is open.
func (t *Timer) Next() (Due, bool) {
	if t.resume == nil {
		t.resume, t.cancel = coro.New(t.generate)
	}
	return t.resume(struct{}{})
}

// Close stops the stream coroutine. A later Next starts a new one.
func (t *Timer) Close() {
	if t.cancel != nil {
		t.cancel()
	}
	t.resume = nil
	t.cancel = nil
}

func (t *Timer) generate(yield func(Due) struct{}, _ func() struct{}) (z Due) {
	for {
		if len(t.queue) == 0 {
			yield(Due{})
			continue
		}

		head := t.queue[0]
		if head.canceled {
			heap.Pop(&t.queue)
			continue
		}

		now := t.now()
		if now.Before(head.when) {
			yield(Due{Delay: min(head.when.Sub(now), t.maxInterval)})
			continue
		}

		heap.Pop(&t.queue)
		yield(Due{Entry: head.call})
	}
}
