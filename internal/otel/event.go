// Package otel provides structured observability for pressroom.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
package otel

import (
	"encoding/json"
	"strings"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Content API requests
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindFetchCancel   EventKind = "fetch.cancel"

	// Media resolution
	KindMediaHit      EventKind = "media.hit"
	KindMediaBatch    EventKind = "media.batch"
	KindMediaFallback EventKind = "media.fallback"

	// Aggregation cycles
	KindCycleStart    EventKind = "cycle.start"
	KindCycleCached   EventKind = "cycle.cached"
	KindCycleComplete EventKind = "cycle.complete"
	KindCycleFailed   EventKind = "cycle.failed"
	KindCycleCancel   EventKind = "cycle.cancel"
	KindCycleStale    EventKind = "cycle.stale"

	// UI events
	KindNavigate EventKind = "ui.navigate"
	KindSearch   EventKind = "ui.search"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events (PRESSROOM_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
)

// Subsystem returns the part of the kind before the first dot.
func (k EventKind) Subsystem() string {
	s := string(k)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "wp", "media", "aggregate", "ui"
	SessionID string         `json:"session_id,omitempty"` // uuid, same for entire app run
	Cycle     uint64         `json:"cycle,omitempty"`      // aggregation cycle generation
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	ID        int            `json:"id,omitempty"`    // post, category or media id
	Path      string         `json:"path,omitempty"`  // request path or route
	Status    int            `json:"status,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
