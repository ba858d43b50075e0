//go:build linux

package hub

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller implements Poller with Linux epoll(7).
type epollPoller struct {
	epfd   int
	flags  map[int]Flag
	events [pollEvents]unix.EpollEvent
}

func newPlatformPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollPoller{epfd: epfd, flags: make(map[int]Flag)}, nil
}

func (p *epollPoller) Register(d Descriptor, flags Flag) error {
	fd := d.Fileno()

	// The kernel drops closed descriptors from the set on its own, so
	// the flag cache may describe an fd number that has since been
	// reused. Always try ADD first and only merge on EEXIST.
	ev := unix.EpollEvent{Events: epollMask(flags), Fd: int32(fd)}
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
	if errors.Is(err, unix.EEXIST) {
		flags |= p.flags[fd]
		ev.Events = epollMask(flags)
		err = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
	}
	if err != nil {
		return epollError("epoll ctl", err)
	}

	p.flags[fd] = flags
	return nil
}

func (p *epollPoller) Unregister(d Descriptor) error {
	fd := d.Fileno()
	delete(p.flags, fd)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return epollError("epoll ctl del", err)
	}
	return nil
}

func (p *epollPoller) Poll(timeout time.Duration) ([]Event, error) {
	n, err := unix.EpollWait(p.epfd, p.events[:], timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, fmt.Errorf("epoll wait: %w", err)
	}

	out := make([]Event, 0, n)
	for _, ev := range p.events[:n] {
		var flags Flag
		if ev.Events&unix.EPOLLIN != 0 {
			flags |= READ
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			flags |= WRITE
		}
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
			flags |= ERR
		}
		out = append(out, Event{FD: int(ev.Fd), Flags: flags})
	}
	return out, nil
}

func (p *epollPoller) Close() error {
	p.flags = make(map[int]Flag)
	return unix.Close(p.epfd)
}

func epollMask(flags Flag) uint32 {
	var mask uint32
	if flags&READ != 0 {
		mask |= unix.EPOLLIN
	}
	if flags&WRITE != 0 {
		mask |= unix.EPOLLOUT
	}
	if flags&ERR != 0 {
		mask |= unix.EPOLLERR | unix.EPOLLHUP | unix.EPOLLRDHUP
	}
	return mask
}

// epollError marks errors caused by the descriptor itself so the hub
// can tell them apart from poller failures.
func epollError(op string, err error) error {
	switch {
	case errors.Is(err, unix.EBADF),
		errors.Is(err, unix.EPERM),
		errors.Is(err, unix.EINVAL),
		errors.Is(err, unix.ENOENT):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidDescriptor, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
