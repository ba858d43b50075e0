package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime/trace"

	"github.com/eapache/queue"
)

// Callback is invoked by the drive loop when a registered descriptor
// becomes ready. It runs on the loop thread and must not block.
type Callback func(fd int, flags Flag)

// State is the lifecycle state of a Hub's poller.
type State int

const (
	Unstarted State = iota // No poller acquired yet
	Running                // Poller acquired by Start
	Stopped                // Poller released by Stop
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Hub is a single-threaded reactor. It keeps the reader and writer
// callback tables, keeps the poller's registrations in step with
// them, drains due timers and runs lifecycle hooks. The loop that
// calls Poll and dispatches events lives outside the hub.
//
// A Hub must only be used from one goroutine.
type Hub struct {
	noCopy noCopy

	// OnInit hooks run, in order, on every call to Init.
	OnInit []func(*Hub)

	// OnClose hooks run, in order, at the end of Close.
	OnClose []func(*Hub)

	readers   map[int]Callback
	writers   map[int]Callback
	poller    Poller
	factory   PollerFactory
	scheduler Scheduler
	timer     *Timer
	ready     *queue.Queue
	logger    *slog.Logger
	fire      fireConfig
	state     State
	base      context.Context
	ctx       context.Context
	task      *trace.Task
}

// New returns an unstarted hub. Without WithScheduler the hub gets a
// fresh Timer, owned by the hub and closed by Close; without
// WithPollerFactory it uses NewPoller.
func New(opts ...Option) *Hub {
	h := &Hub{
		readers: make(map[int]Callback),
		writers: make(map[int]Callback),
		factory: NewPoller,
		ready:   queue.New(),
		logger:  slog.Default(),
		base:    context.Background(),
		fire: fireConfig{
			minDelay:  FireTimersMinDelay,
			maxDelay:  FireTimersMaxDelay,
			maxTimers: FireTimersMaxTimers,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.scheduler == nil {
		h.timer = NewTimer()
		h.scheduler = h.timer
	}
	h.ctx = WithHub(h.base, h)
	return h
}

// Start acquires a poller from the factory, replacing any previous
// one.
func (h *Hub) Start() error {
	p, err := h.factory()
	if err != nil {
		return fmt.Errorf("hub start: %w", err)
	}

	if h.task == nil {
		h.ctx, h.task = trace.NewTask(WithHub(h.base, h), hubTraceTaskType)
	}

	h.poller = p
	h.state = Running
	h.Log("START")
	return nil
}

// Stop closes the active poller. The callback tables are left alone;
// use Close to forget registrations.
func (h *Hub) Stop() error {
	h.Log("STOP")

	p := h.poller
	h.poller = nil
	if h.state == Running {
		h.state = Stopped
	}
	if h.task != nil {
		h.task.End()
		h.task = nil
	}

	if p == nil {
		return nil
	}
	if err := p.Close(); err != nil {
		return fmt.Errorf("hub stop: %w", err)
	}
	return nil
}

// Init runs every OnInit hook in order. Hooks run again on every
// call, so they should be idempotent.
func (h *Hub) Init() {
	h.Log("INIT")
	for _, fn := range h.OnInit {
		fn(h)
	}
}

// Close unregisters every known descriptor from the poller, ignoring
// failures, and empties both tables. A Timer created by New is closed
// as well; one passed through WithScheduler belongs to the caller.
// The OnClose hooks run last. Close is safe in any state.
func (h *Hub) Close() {
	h.Log("CLOSE")
	for fd := range h.readers {
		h.unregister(fd)
	}
	clear(h.readers)
	for fd := range h.writers {
		h.unregister(fd)
	}
	clear(h.writers)

	if h.timer != nil {
		h.timer.Close()
	}

	for _, fn := range h.OnClose {
		fn(h)
	}
}

// Add registers each descriptor in ds for flags with cb. Flags that
// include READ go to the reader table, everything else to the writer
// table.
//
// A descriptor the poller rejects as invalid is dropped from both
// tables, unregistered on a best-effort basis, and the rest of the
// batch carries on. Any other failure stops the batch and is returned.
func (h *Hub) Add(ds []Descriptor, cb Callback, flags Flag) error {
	for _, d := range ds {
		err := h.add(d, cb, flags)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrInvalidDescriptor) {
			return err
		}
		fd := d.Fileno()
		h.Logf("ADD %d DISCARD %v", fd, err)
		h.unregister(fd)
		h.discard(fd)
	}
	return nil
}

func (h *Hub) add(d Descriptor, cb Callback, flags Flag) error {
	if h.poller == nil {
		return ErrNoPoller
	}
	if err := h.poller.Register(d, flags); err != nil {
		return err
	}

	fd := d.Fileno()
	if flags&READ != 0 {
		h.readers[fd] = cb
	} else {
		h.writers[fd] = cb
	}
	h.Logf("ADD %d %s", fd, ReprFlag(flags))
	return nil
}

// AddReader registers d for READ|ERR.
func (h *Hub) AddReader(d Descriptor, cb Callback) error {
	return h.Add([]Descriptor{d}, cb, READ|ERR)
}

// AddWriter registers d for WRITE.
func (h *Hub) AddWriter(d Descriptor, cb Callback) error {
	return h.Add([]Descriptor{d}, cb, WRITE)
}

// UpdateReaders registers every descriptor in m for READ|ERR. The
// poller sees the original handles; the reader table is keyed on
// their file descriptors. A failure does not stop the remaining
// registrations; all failures are joined into the returned error.
func (h *Hub) UpdateReaders(m map[Descriptor]Callback) error {
	var errs []error
	for d, cb := range m {
		if err := h.AddReader(d, cb); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UpdateWriters registers every descriptor in m for WRITE, with the
// same error handling as UpdateReaders.
func (h *Hub) UpdateWriters(m map[Descriptor]Callback) error {
	var errs []error
	for d, cb := range m {
		if err := h.AddWriter(d, cb); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove forgets d in both tables and unregisters it from the poller,
// ignoring any poller failure. Unknown descriptors are a no-op. The
// descriptor itself is not closed.
func (h *Hub) Remove(d Descriptor) {
	fd := d.Fileno()
	h.Logf("REMOVE %d", fd)
	h.unregister(fd)
	h.discard(fd)
}

// RemoveReader forgets the reader callback for d, keeping a writer
// registration if there is one.
func (h *Hub) RemoveReader(d Descriptor) {
	fd := d.Fileno()
	if _, ok := h.readers[fd]; !ok {
		return
	}
	delete(h.readers, fd)
	h.reregister(fd, h.writers, WRITE)
}

// RemoveWriter forgets the writer callback for d, keeping a reader
// registration if there is one.
func (h *Hub) RemoveWriter(d Descriptor) {
	fd := d.Fileno()
	if _, ok := h.writers[fd]; !ok {
		return
	}
	delete(h.writers, fd)
	h.reregister(fd, h.readers, READ|ERR)
}

// reregister drops all poller interest in fd and restores interest
// for the side still present in table.
func (h *Hub) reregister(fd int, table map[int]Callback, flags Flag) {
	h.unregister(fd)
	if _, ok := table[fd]; !ok || h.poller == nil {
		return
	}
	if err := h.poller.Register(FD(fd), flags); err != nil {
		h.Logf("REREGISTER %d DISCARD %v", fd, err)
		h.discard(fd)
	}
}

func (h *Hub) unregister(fd int) {
	if h.poller == nil {
		return
	}
	_ = h.poller.Unregister(FD(fd))
}

func (h *Hub) discard(fd int) {
	delete(h.readers, fd)
	delete(h.writers, fd)
}

// CallbackFor returns the callback the drive loop should run for an
// event with flag on d. READ resolves against the reader table and
// WRITE against the writer table. A bare ERR goes to the reader,
// falling back to the writer. A miss returns ErrNoCallback.
func (h *Hub) CallbackFor(d Descriptor, flag Flag) (Callback, error) {
	fd := d.Fileno()
	var (
		cb Callback
		ok bool
	)
	switch {
	case flag&READ != 0:
		cb, ok = h.readers[fd]
	case flag&WRITE != 0:
		cb, ok = h.writers[fd]
	case flag&ERR != 0:
		if cb, ok = h.readers[fd]; !ok {
			cb, ok = h.writers[fd]
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: fd %d flags %q", ErrNoCallback, fd, ReprFlag(flag))
	}
	return cb, nil
}

// CallbackForOr is CallbackFor returning def on a miss.
func (h *Hub) CallbackForOr(d Descriptor, flag Flag, def Callback) Callback {
	cb, err := h.CallbackFor(d, flag)
	if err != nil {
		return def
	}
	return cb
}

// CallSoon queues fn to run on the next RunReady.
func (h *Hub) CallSoon(fn func()) {
	h.ready.Add(fn)
}

// RunReady runs the callbacks queued by CallSoon in FIFO order and
// returns how many ran. Callbacks queued while it runs wait for the
// next call.
func (h *Hub) RunReady() int {
	n := h.ready.Length()
	for i := 0; i < n; i++ {
		fn := h.ready.Remove().(func())
		fn()
	}
	return n
}

// State returns the poller lifecycle state.
func (h *Hub) State() State {
	return h.state
}

// Poller returns the active poller, or nil outside Running.
func (h *Hub) Poller() Poller {
	return h.poller
}

// Scheduler returns the timer source drained by FireTimers.
func (h *Hub) Scheduler() Scheduler {
	return h.scheduler
}

// Context returns the hub's context. It carries the hub, see
// FromContext.
func (h *Hub) Context() context.Context {
	return h.ctx
}

// Readers returns a copy of the reader table.
func (h *Hub) Readers() map[int]Callback {
	return maps.Clone(h.readers)
}

// Writers returns a copy of the writer table.
func (h *Hub) Writers() map[int]Callback {
	return maps.Clone(h.writers)
}
