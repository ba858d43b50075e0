//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package hub

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func pipe(t *testing.T) (rfd, wfd int) {
	t.Helper()

	var p [2]int
	require.NoError(t, unix.Pipe(p[:]))
	t.Cleanup(func() {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
	})
	return p[0], p[1]
}

func eventFor(events []Event, fd int) (Flag, bool) {
	for _, ev := range events {
		if ev.FD == fd {
			return ev.Flags, true
		}
	}
	return 0, false
}

func TestTimeoutMillis(t *testing.T) {
	r := require.New(t)

	r.Equal(-1, timeoutMillis(-time.Second))
	r.Equal(0, timeoutMillis(0))
	r.Equal(1, timeoutMillis(time.Microsecond))
	r.Equal(1500, timeoutMillis(1500*time.Millisecond))
}

func TestPollerReadWrite(t *testing.T) {
	r := require.New(t)

	p, err := NewPoller()
	r.NoError(err)
	defer p.Close()

	rfd, wfd := pipe(t)
	r.NoError(p.Register(FD(rfd), READ|ERR))
	r.NoError(p.Register(FD(wfd), WRITE))

	events, err := p.Poll(100 * time.Millisecond)
	r.NoError(err)
	flags, ok := eventFor(events, wfd)
	r.True(ok)
	r.Equal(WRITE, flags&WRITE)
	_, ok = eventFor(events, rfd)
	r.False(ok)

	_, err = unix.Write(wfd, []byte("x"))
	r.NoError(err)

	events, err = p.Poll(100 * time.Millisecond)
	r.NoError(err)
	flags, ok = eventFor(events, rfd)
	r.True(ok)
	r.Equal(READ, flags&READ)

	r.NoError(p.Unregister(FD(wfd)))
	r.NoError(p.Unregister(FD(rfd)))

	events, err = p.Poll(0)
	r.NoError(err)
	r.Empty(events)
}

func TestPollerHangup(t *testing.T) {
	r := require.New(t)

	p, err := NewPoller()
	r.NoError(err)
	defer p.Close()

	var fds [2]int
	r.NoError(unix.Pipe(fds[:]))
	defer unix.Close(fds[0])

	r.NoError(p.Register(FD(fds[0]), READ|ERR))
	r.NoError(unix.Close(fds[1]))

	events, err := p.Poll(100 * time.Millisecond)
	r.NoError(err)
	flags, ok := eventFor(events, fds[0])
	r.True(ok)
	r.Equal(ERR, flags&ERR)
}

func TestPollerInvalidDescriptor(t *testing.T) {
	r := require.New(t)

	p, err := NewPoller()
	r.NoError(err)
	defer p.Close()

	r.ErrorIs(p.Register(FD(-1), READ), ErrInvalidDescriptor)
	r.Error(p.Unregister(FD(-1)))
}

func TestPollerFileHandle(t *testing.T) {
	r := require.New(t)

	p, err := NewPoller()
	r.NoError(err)
	defer p.Close()

	rf, wf, err := os.Pipe()
	r.NoError(err)
	defer rf.Close()
	defer wf.Close()

	r.NoError(p.Register(File(wf), WRITE))
	events, err := p.Poll(100 * time.Millisecond)
	r.NoError(err)
	_, ok := eventFor(events, int(wf.Fd()))
	r.True(ok)
	r.NoError(p.Unregister(FD(int(wf.Fd()))))
}

func TestHubWithPoller(t *testing.T) {
	r := require.New(t)

	h := New()
	r.NoError(h.Start())
	defer h.Stop()

	rfd, wfd := pipe(t)

	var got []Flag
	onReadable := func(fd int, flags Flag) {
		buf := make([]byte, 16)
		_, _ = unix.Read(fd, buf)
		got = append(got, flags)
	}

	r.NoError(h.Add([]Descriptor{FD(-1), FD(rfd)}, onReadable, READ|ERR))
	r.Equal([]int{rfd}, keys(h.Readers()))

	_, err := unix.Write(wfd, []byte("ping"))
	r.NoError(err)

	events, err := h.Poller().Poll(100 * time.Millisecond)
	r.NoError(err)
	r.NotEmpty(events)
	for _, ev := range events {
		cb, err := h.CallbackFor(FD(ev.FD), ev.Flags)
		r.NoError(err)
		cb(ev.FD, ev.Flags)
	}
	r.Len(got, 1)
	r.Equal(READ, got[0]&READ)

	h.Close()
	r.Empty(h.Readers())

	events, err = h.Poller().Poll(0)
	r.NoError(err)
	r.Empty(events)
}

func TestHubReusedDescriptor(t *testing.T) {
	r := require.New(t)

	h := New()
	r.NoError(h.Start())
	defer h.Stop()

	var fds [2]int
	r.NoError(unix.Pipe(fds[:]))
	stale := fds[0]
	r.NoError(h.AddReader(FD(stale), onRead))

	// Closing without Remove leaves the hub's tables pointing at a
	// number the kernel is free to hand out again.
	r.NoError(unix.Close(fds[0]))
	r.NoError(unix.Close(fds[1]))

	rfd, wfd := pipe(t)
	if rfd != stale {
		t.Skipf("descriptor %d not reused (got %d)", stale, rfd)
	}

	r.NoError(h.AddReader(FD(rfd), onRead))
	r.Contains(h.Readers(), rfd)

	_, err := unix.Write(wfd, []byte("x"))
	r.NoError(err)

	events, err := h.Poller().Poll(100 * time.Millisecond)
	r.NoError(err)
	flags, ok := eventFor(events, rfd)
	r.True(ok)
	r.Equal(READ, flags&READ)
}
