package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/pressroom/internal/config"
)

// eventRecord mirrors otel.Event for JSON decoding. Decoding the JSONL
// directly keeps older event files readable as the schema evolves.
type eventRecord struct {
	Time      time.Time `json:"t"`
	Level     string    `json:"level"`
	Kind      string    `json:"kind"`
	Comp      string    `json:"comp"`
	SessionID string    `json:"session_id"`
	Cycle     uint64    `json:"cycle"`
	DurMs     float64   `json:"dur_ms"`
	Count     int       `json:"count"`
	ID        int       `json:"id"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	Err       string    `json:"err"`
	Msg       string    `json:"msg"`
}

// eventFilter selects events by kind prefix, minimum level, component and
// cycle. Zero fields match everything.
type eventFilter struct {
	kind  string
	level string
	comp  string
	cycle uint64
}

var (
	eventsTail   int
	eventsFollow bool
	eventsJSON   bool
	eventsFilter eventFilter
	eventsFile   string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the JSONL event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openEventLog()
		if err != nil {
			return err
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		for _, l := range readTailLines(f, eventsTail, eventsFilter.match) {
			fmt.Fprintln(out, formatEvent(l.ev, l.raw, eventsJSON))
		}
		if !eventsFollow {
			return nil
		}

		ctx := cmd.Context()
		reader := bufio.NewReader(f)
		for {
			line, err := reader.ReadBytes('\n')
			if err == io.EOF {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(100 * time.Millisecond):
				}
				continue
			}
			if err != nil {
				return err
			}
			line = trimLine(line)
			var ev eventRecord
			if len(line) == 0 || json.Unmarshal(line, &ev) != nil {
				continue
			}
			if eventsFilter.match(ev) {
				fmt.Fprintln(out, formatEvent(ev, line, eventsJSON))
			}
		}
	},
}

func init() {
	f := eventsCmd.Flags()
	f.IntVar(&eventsTail, "tail", 50, "number of recent events to show")
	f.BoolVarP(&eventsFollow, "follow", "f", false, "keep printing new events")
	f.BoolVar(&eventsJSON, "json", false, "print raw JSON lines")
	f.StringVar(&eventsFilter.kind, "kind", "", "filter by event kind prefix, e.g. cycle or fetch.error")
	f.StringVar(&eventsFilter.level, "level", "", "minimum level: debug, info, warn, error")
	f.StringVar(&eventsFilter.comp, "comp", "", "filter by component: wp, media, aggregate, ui")
	f.Uint64Var(&eventsFilter.cycle, "cycle", 0, "filter by aggregation cycle")

	statsCmd.Flags().StringVar(&eventsFile, "file", "", "event log to read (default: state dir)")
	eventsCmd.Flags().StringVar(&eventsFile, "file", "", "event log to read (default: state dir)")
}

func openEventLog() (*os.File, error) {
	path := eventsFile
	if path == "" {
		path = filepath.Join(config.StateDir(), "events.jsonl")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("event log not found at %s (run the TUI first): %w", path, err)
	}
	return f, nil
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.cycle != 0 && ev.Cycle != f.cycle {
		return false
	}
	return true
}

func formatEvent(ev eventRecord, raw []byte, rawJSON bool) string {
	if rawJSON {
		return string(raw)
	}
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-9s] %-16s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}
	if ev.Path != "" {
		parts = append(parts, ev.Path)
	}
	if ev.Msg != "" {
		parts = append(parts, ev.Msg)
	}
	if ev.Status > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", ev.Status))
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.ID > 0 {
		parts = append(parts, fmt.Sprintf("id=%d", ev.ID))
	}
	if ev.Cycle > 0 {
		parts = append(parts, fmt.Sprintf("cyc=%d", ev.Cycle))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines returns the last n events of r that match.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		var ev eventRecord
		if len(raw) == 0 || json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		// scanner reuses its buffer
		rawCopy := append([]byte(nil), raw...)
		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
			continue
		}
		copy(ring, ring[1:])
		ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
	}
	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
