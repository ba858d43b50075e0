//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package hub

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// kqueuePoller implements Poller with BSD kqueue(2).
type kqueuePoller struct {
	kq     int
	flags  map[int]Flag
	events [pollEvents]unix.Kevent_t
}

func newPlatformPoller() (Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue create: %w", err)
	}
	unix.CloseOnExec(kq)
	return &kqueuePoller{kq: kq, flags: make(map[int]Flag)}, nil
}

func (p *kqueuePoller) Register(d Descriptor, flags Flag) error {
	fd := d.Fileno()

	// EV_ADD on an existing filter only updates it, and closed
	// descriptors lose their filters, so requested filters are always
	// re-added instead of trusting the flag cache.
	var changes []unix.Kevent_t
	if flags&READ != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_ADD))
	}
	if flags&WRITE != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD))
	}
	if len(changes) > 0 {
		if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
			return kqueueError("kevent add", err)
		}
	}

	p.flags[fd] |= flags
	return nil
}

func (p *kqueuePoller) Unregister(d Descriptor) error {
	fd := d.Fileno()
	prev, ok := p.flags[fd]
	delete(p.flags, fd)
	if !ok {
		return fmt.Errorf("kevent delete: %w: %d not registered", ErrInvalidDescriptor, fd)
	}

	var changes []unix.Kevent_t
	if prev&READ != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_DELETE))
	}
	if prev&WRITE != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
	}
	if len(changes) == 0 {
		return nil
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return kqueueError("kevent delete", err)
	}
	return nil
}

func (p *kqueuePoller) Poll(timeout time.Duration) ([]Event, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}

	n, err := unix.Kevent(p.kq, nil, p.events[:], ts)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, fmt.Errorf("kevent wait: %w", err)
	}

	// kqueue reports read and write readiness as separate events;
	// merge them per descriptor, keeping first-seen order.
	out := make([]Event, 0, n)
	index := make(map[int]int, n)
	for _, ev := range p.events[:n] {
		var flags Flag
		switch int(ev.Filter) {
		case unix.EVFILT_READ:
			flags |= READ
		case unix.EVFILT_WRITE:
			flags |= WRITE
		}
		if int(ev.Flags)&(unix.EV_EOF|unix.EV_ERROR) != 0 {
			flags |= ERR
		}

		fd := int(ev.Ident)
		if i, ok := index[fd]; ok {
			out[i].Flags |= flags
			continue
		}
		index[fd] = len(out)
		out = append(out, Event{FD: fd, Flags: flags})
	}
	return out, nil
}

func (p *kqueuePoller) Close() error {
	p.flags = make(map[int]Flag)
	return unix.Close(p.kq)
}

func kevent(fd, filter, flags int) unix.Kevent_t {
	var ev unix.Kevent_t
	unix.SetKevent(&ev, fd, filter, flags)
	return ev
}

func kqueueError(op string, err error) error {
	switch {
	case errors.Is(err, unix.EBADF),
		errors.Is(err, unix.EINVAL),
		errors.Is(err, unix.ENOENT):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidDescriptor, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
