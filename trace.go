package hub

import (
	"fmt"
	"runtime/trace"
	"strings"
)

const (
	hubTraceTaskType   = "hub"
	hubTraceRegionType = "hub-fire-timers"
	hubTraceCategory   = "hub"
)

// Log writes msg to the execution trace, prefixed with the hub's
// address. It is free when tracing is off.
func (h *Hub) Log(msg string) {
	if trace.IsEnabled() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%p ", h)
		sb.WriteString(msg)
		trace.Log(h.ctx, hubTraceCategory, sb.String())
	}
}

// Logf is the formatted form of Log.
func (h *Hub) Logf(format string, args ...any) {
	if trace.IsEnabled() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%p ", h)
		fmt.Fprintf(&sb, format, args...)
		trace.Log(h.ctx, hubTraceCategory, sb.String())
	}
}
