package otel

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitWritesValidJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindFetchStart, Level: LevelInfo, Comp: "wp", Path: "/categories"})
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["kind"] != "fetch.start" {
		t.Errorf("expected kind=fetch.start, got %v", lines[0]["kind"])
	}
	if lines[0]["comp"] != "wp" {
		t.Errorf("expected comp=wp, got %v", lines[0]["comp"])
	}
	if lines[0]["path"] != "/categories" {
		t.Errorf("expected path=/categories, got %v", lines[0]["path"])
	}
}

func TestEmitSetsTimeAndSessionID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()
	after := time.Now()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Time.Before(before) || ev.Time.After(after) {
		t.Errorf("time %v not in [%v, %v]", ev.Time, before, after)
	}
	if _, err := uuid.Parse(ev.SessionID); err != nil {
		t.Errorf("session_id should be a uuid, got %q", ev.SessionID)
	}
	if ev.SessionID != l.SessionID() {
		t.Errorf("session_id %q does not match logger %q", ev.SessionID, l.SessionID())
	}
}

func TestDurToMs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindFetchComplete, Dur: 1500 * time.Millisecond})
	l.Close()

	lines := decodeLines(t, &buf)
	if lines[0]["dur_ms"] != float64(1500) {
		t.Errorf("expected dur_ms=1500, got %v", lines[0]["dur_ms"])
	}
}

func TestOmitempty(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := strings.TrimSpace(buf.String())
	for _, field := range []string{"dur_ms", "count", "id", "path", "status", "cycle", "err", "msg", "extra"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("expected field %q to be omitted, but found in: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l.Emit(Event{Kind: KindMediaBatch, Comp: "media", ID: id + 1})
		}(i)
	}
	wg.Wait()
	l.Close()

	if lines := decodeLines(t, &buf); len(lines) != 100 {
		t.Errorf("expected 100 lines, got %d", len(lines))
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Emit(Event{Kind: KindStartup})
	l.Info(KindStartup, "main", "x")
	l.SetRingBuffer(NewRingBuffer(4))
	l.Close()
	if l.Dropped() != 0 || l.SessionID() != "" {
		t.Error("nil logger should report zero values")
	}
}

func TestCloseIsIdempotentAndFlushes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup, Msg: "start"})
	l.Emit(Event{Kind: KindShutdown, Msg: "stop"})
	l.Close()
	l.Close()

	if lines := decodeLines(t, &buf); len(lines) != 2 {
		t.Fatalf("expected 2 lines after Close, got %d", len(lines))
	}

	l.Emit(Event{Kind: KindError})
	if l.Dropped() != 1 {
		t.Errorf("emit after close should count as dropped, got %d", l.Dropped())
	}
}

type blockingWriter struct {
	started chan struct{}
	block   chan struct{}
	once    sync.Once
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.started)
		<-w.block
	})
	return len(p), nil
}

func TestDropCounter(t *testing.T) {
	bw := &blockingWriter{
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	l := NewLogger(bw)

	l.Emit(Event{Kind: KindFetchStart})
	<-bw.started

	for i := 0; i < writerChanSize+10; i++ {
		l.Emit(Event{Kind: KindFetchStart})
	}
	if l.Dropped() == 0 {
		t.Error("expected drops when channel is full, got 0")
	}

	close(bw.block)
	l.Close()
}

type errForTest string

func (e errForTest) Error() string { return string(e) }

func TestConvenienceHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Info(KindStartup, "main", "starting")
	l.Warn(KindFetchError, "wp", "status 500")
	l.Error(KindError, "aggregate", errForTest("categories unavailable"))
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	tests := []struct{ level, kind, comp string }{
		{"info", "sys.startup", "main"},
		{"warn", "fetch.error", "wp"},
		{"error", "sys.error", "aggregate"},
	}
	for i, tt := range tests {
		if lines[i]["level"] != tt.level || lines[i]["kind"] != tt.kind || lines[i]["comp"] != tt.comp {
			t.Errorf("line %d = %v, want %+v", i, lines[i], tt)
		}
	}
	if lines[2]["err"] != "categories unavailable" {
		t.Errorf("expected err text, got %v", lines[2]["err"])
	}
}

func TestSubsystem(t *testing.T) {
	tests := map[EventKind]string{
		KindMediaFallback: "media",
		KindCycleStale:    "cycle",
		EventKind("bare"): "bare",
	}
	for kind, want := range tests {
		if got := kind.Subsystem(); got != want {
			t.Errorf("%s.Subsystem() = %q, want %q", kind, got, want)
		}
	}
}
