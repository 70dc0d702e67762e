package otel

import (
	"os"
	"sync/atomic"
)

var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("PRESSROOM_TRACE") != "")
}

// TraceEnabled reports whether PRESSROOM_TRACE is set. When true the UI
// emits a trace event for every message it receives.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag for tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
