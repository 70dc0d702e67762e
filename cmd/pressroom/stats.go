package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize requests, media and cycles from the event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openEventLog()
		if err != nil {
			return err
		}
		defer f.Close()

		s, err := collectStats(f)
		if err != nil {
			return err
		}
		s.print(cmd.OutOrStdout())
		return nil
	},
}

// eventStats aggregates one event log, bucketed by session.
type eventStats struct {
	sessions  map[string]bool
	kinds     map[string]int
	durations []float64 // fetch.complete, ms
	paths     map[string]int
	errors    map[string]int // fetch.error by path
}

func collectStats(r io.Reader) (*eventStats, error) {
	s := &eventStats{
		sessions: make(map[string]bool),
		kinds:    make(map[string]int),
		paths:    make(map[string]int),
		errors:   make(map[string]int),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		var ev eventRecord
		if json.Unmarshal(scanner.Bytes(), &ev) != nil {
			continue
		}
		if ev.SessionID != "" {
			s.sessions[ev.SessionID] = true
		}
		s.kinds[ev.Kind]++
		switch ev.Kind {
		case "fetch.complete":
			s.durations = append(s.durations, ev.DurMs)
			s.paths[ev.Path]++
		case "fetch.error":
			s.errors[ev.Path]++
		}
	}
	return s, scanner.Err()
}

func (s *eventStats) print(w io.Writer) {
	fmt.Fprintf(w, "Sessions:              %d\n", len(s.sessions))

	fmt.Fprintln(w, "\n=== Requests ===")
	fmt.Fprintf(w, "Completed:             %d\n", s.kinds["fetch.complete"])
	fmt.Fprintf(w, "Failed:                %d\n", s.kinds["fetch.error"])
	fmt.Fprintf(w, "Cancelled:             %d\n", s.kinds["fetch.cancel"])
	if len(s.durations) > 0 {
		fmt.Fprintf(w, "Latency p50/p95:       %.1fms / %.1fms\n", percentile(s.durations, 0.50), percentile(s.durations, 0.95))
	}
	printCounts(w, "By path", s.paths)
	printCounts(w, "Failures by path", s.errors)

	fmt.Fprintln(w, "\n=== Media ===")
	fmt.Fprintf(w, "Cache hits:            %d\n", s.kinds["media.hit"])
	fmt.Fprintf(w, "Batches:               %d\n", s.kinds["media.batch"])
	fmt.Fprintf(w, "Fallbacks:             %d\n", s.kinds["media.fallback"])

	fmt.Fprintln(w, "\n=== Cycles ===")
	for _, k := range []string{"start", "cached", "complete", "failed", "cancel", "stale"} {
		fmt.Fprintf(w, "%-22s %d\n", k+":", s.kinds["cycle."+k])
	}
}

func printCounts(w io.Writer, title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-35s %d\n", strings.TrimSpace(k), m[k])
	}
}

// percentile returns the nearest-rank percentile of vals. vals is sorted in place.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	i := int(p*float64(len(vals)) + 0.5)
	if i < 1 {
		i = 1
	}
	if i > len(vals) {
		i = len(vals)
	}
	return vals[i-1]
}
