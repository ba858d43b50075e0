package hub

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// file is a handle exposing a file descriptor, compared by value.
type file struct {
	fd int
}

func (f file) Fileno() int {
	return f.fd
}

type mockPoller struct {
	mock.Mock
}

func (m *mockPoller) Register(d Descriptor, flags Flag) error {
	return m.Called(d, flags).Error(0)
}

func (m *mockPoller) Unregister(d Descriptor) error {
	return m.Called(d).Error(0)
}

func (m *mockPoller) Poll(timeout time.Duration) ([]Event, error) {
	args := m.Called(timeout)
	events, _ := args.Get(0).([]Event)
	return events, args.Error(1)
}

func (m *mockPoller) Close() error {
	return m.Called().Error(0)
}

// permissive sets catch-all expectations. Specific expectations must
// be registered before calling it, since testify matches in order.
func (m *mockPoller) permissive() *mockPoller {
	m.On("Register", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Unregister", mock.Anything).Return(nil).Maybe()
	m.On("Close").Return(nil).Maybe()
	return m
}

func pollerFactory(p Poller) Option {
	return WithPollerFactory(func() (Poller, error) {
		return p, nil
	})
}

// sliceScheduler is a finite scheduler.
type sliceScheduler struct {
	pending bool
	dues    []Due
	pulls   int
}

func (s *sliceScheduler) Pending() bool {
	return s.pending
}

func (s *sliceScheduler) Next() (Due, bool) {
	s.pulls++
	if len(s.dues) == 0 {
		return Due{}, false
	}
	d := s.dues[0]
	s.dues = s.dues[1:]
	return d, true
}

// funcScheduler is an endless scheduler driven by a function.
type funcScheduler func() Due

func (f funcScheduler) Pending() bool {
	return true
}

func (f funcScheduler) Next() (Due, bool) {
	return f(), true
}

func keys(m map[int]Callback) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
