package hub

import (
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"
)

// CallbackName returns a short, human-readable name for cb:
// "<missing>" for nil, otherwise its function name without the
// import path.
func CallbackName(cb Callback) string {
	if cb == nil {
		return "<missing>"
	}
	fn := runtime.FuncForPC(reflect.ValueOf(cb).Pointer())
	if fn == nil {
		return fmt.Sprintf("%p", cb)
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ReprActive describes every registration, readers first, each table
// in descriptor order, e.g. "(3)hub.onRead->R!, (4)hub.onWrite->W".
func (h *Hub) ReprActive() string {
	parts := make([]string, 0, len(h.readers)+len(h.writers))
	for _, fd := range slices.Sorted(maps.Keys(h.readers)) {
		parts = append(parts, fmt.Sprintf("(%d)%s->%s", fd, CallbackName(h.readers[fd]), ReprFlag(READ|ERR)))
	}
	for _, fd := range slices.Sorted(maps.Keys(h.writers)) {
		parts = append(parts, fmt.Sprintf("(%d)%s->%s", fd, CallbackName(h.writers[fd]), ReprFlag(WRITE)))
	}
	return strings.Join(parts, ", ")
}

// ReprEvents describes a batch of readiness events as the callbacks
// they would dispatch to, e.g. "hub.onRead(3)->R". Events with no
// matching registration render as "(GONE)".
func (h *Hub) ReprEvents(events []Event) string {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		name := "(GONE)"
		if cb, err := h.CallbackFor(FD(ev.FD), ev.Flags); err == nil {
			name = CallbackName(cb)
		}
		parts = append(parts, fmt.Sprintf("%s(%d)->%s", name, ev.FD, ReprFlag(ev.Flags)))
	}
	return strings.Join(parts, ", ")
}
