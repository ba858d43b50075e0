package hub

import (
	"context"
)

// hubContextKey is a unique type used as a key for storing Hub
// values in a context.
type hubContextKey struct{}

// WithHub returns a copy of ctx carrying h as the current hub.
func WithHub(ctx context.Context, h *Hub) context.Context {
	return context.WithValue(ctx, hubContextKey{}, h)
}

// FromContext retrieves the hub stored by WithHub.
func FromContext(ctx context.Context) (*Hub, bool) {
	val, ok := ctx.Value(hubContextKey{}).(*Hub)
	return val, ok
}

// MustFromContext retrieves the hub stored by WithHub, panicking if
// there is none.
func MustFromContext(ctx context.Context) *Hub {
	val, ok := FromContext(ctx)
	if !ok {
		panic("hub: hub not found in context")
	}
	return val
}
