package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/pressroom/internal/otel"
	"github.com/abelbrown/pressroom/internal/richtext"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing request, media and cycle
// counters plus recent events. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int, now time.Time) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Content Stats"))
	lines = append(lines, fmt.Sprintf("  Requests:   %d complete, %d errors, %d cancelled",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError], stats[otel.KindFetchCancel]))
	lines = append(lines, fmt.Sprintf("  Media:      %d waves, %d cache hits, %d fallbacks",
		stats[otel.KindMediaBatch], stats[otel.KindMediaHit], stats[otel.KindMediaFallback]))
	lines = append(lines, fmt.Sprintf("  Cycles:     %d complete, %d cached, %d failed, %d cancelled, %d stale",
		stats[otel.KindCycleComplete], stats[otel.KindCycleCached], stats[otel.KindCycleFailed],
		stats[otel.KindCycleCancel], stats[otel.KindCycleStale]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(now.Sub(e.Time)), string(e.Kind))
		if e.Path != "" {
			line += "  " + richtext.Truncate(e.Path, 24)
		}
		if e.Msg != "" {
			line += "  " + richtext.Truncate(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + richtext.Truncate(e.Err, 30)
		}
		if e.Cycle != 0 {
			line += fmt.Sprintf("  cyc:%d", e.Cycle)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 84
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	return StatusBar.Width(width).Render("  [DEBUG]  " + hint("ctrl+d", "close"))
}
