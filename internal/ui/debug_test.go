package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/pressroom/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	result := debugOverlay(nil, 80, 24, time.Now())
	if result != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", result)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	now := time.Now()
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: now})
	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: now})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: now})
	ring.Push(otel.Event{Kind: otel.KindMediaFallback, Time: now})
	ring.Push(otel.Event{Kind: otel.KindCycleComplete, Time: now})

	result := debugOverlay(ring, 120, 40, now)

	if !strings.Contains(result, "Content Stats") {
		t.Error("overlay should contain 'Content Stats' header")
	}
	if !strings.Contains(result, "2 complete, 1 errors, 0 cancelled") {
		t.Errorf("overlay should show request stats, got:\n%s", result)
	}
	if !strings.Contains(result, "1 fallbacks") {
		t.Errorf("overlay should show media stats, got:\n%s", result)
	}
	if !strings.Contains(result, "5 / 64 events") {
		t.Errorf("overlay should show buffer stats, got:\n%s", result)
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	now := time.Now()
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: now, Path: "/categories"})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: now, Err: "timeout"})
	ring.Push(otel.Event{Kind: otel.KindCycleStart, Time: now, Cycle: 7})

	result := debugOverlay(ring, 120, 40, now)

	if !strings.Contains(result, "Recent Events") {
		t.Error("overlay should contain 'Recent Events' header")
	}
	if !strings.Contains(result, "/categories") {
		t.Errorf("overlay should show request path, got:\n%s", result)
	}
	if !strings.Contains(result, "ERR:timeout") {
		t.Errorf("overlay should show error, got:\n%s", result)
	}
	if !strings.Contains(result, "cyc:7") {
		t.Errorf("overlay should show cycle number, got:\n%s", result)
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now()})
	}

	result := debugOverlay(ring, 80, 10, time.Now())
	if result == "" {
		t.Error("overlay should still render with small height")
	}
	// height=10 leaves 6 content lines plus border and padding
	if lines := strings.Count(result, "\n"); lines > 20 {
		t.Errorf("overlay should be truncated, got %d lines", lines)
	}
}

func TestDebugToggle(t *testing.T) {
	ring := otel.NewRingBuffer(16)
	app := NewAppWithConfig(AppConfig{
		Obs: ObsConfig{Ring: ring},
	})
	app.ready = true
	app.width = 80
	app.height = 24

	if app.debugVisible {
		t.Error("debug should be hidden initially")
	}

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	updated := model.(App)
	if !updated.debugVisible {
		t.Error("ctrl+d should show debug overlay")
	}

	view := updated.View()
	if !strings.Contains(view, "[DEBUG]") {
		t.Errorf("debug view should contain '[DEBUG]', got:\n%s", view)
	}

	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	updated = model.(App)
	if updated.debugVisible {
		t.Error("second ctrl+d should hide debug overlay")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0ms"},
		{50 * time.Millisecond, "50ms"},
		{999 * time.Millisecond, "999ms"},
		{1500 * time.Millisecond, "1.5s"},
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "2m"}, // 1.5 minutes rounds to 2 with %.0f
		{5 * time.Minute, "5m"},
	}
	for _, tt := range tests {
		got := formatAge(tt.dur)
		if got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.dur, got, tt.want)
		}
	}
}

func TestFormatAgeNegative(t *testing.T) {
	got := formatAge(-5 * time.Second)
	if got != "0ms" {
		t.Errorf("formatAge(-5s) = %q, want \"0ms\"", got)
	}
}
