//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package hub

func newPlatformPoller() (Poller, error) {
	return nil, ErrPollerUnsupported
}
