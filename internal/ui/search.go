package ui

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/pressroom/internal/logging"
	"github.com/abelbrown/pressroom/internal/otel"
	"github.com/abelbrown/pressroom/internal/wp"
)

// searchState is the search modal. Each query gets a sequence number and
// replaces the one in flight.
type searchState struct {
	active  bool
	input   textinput.Model
	term    string
	hits    []wp.SearchHit
	seq     uint64
	cancel  context.CancelFunc
	loading bool
	err     error
	cursor  int
}

func (a App) openSearch() (App, tea.Cmd) {
	a.search.active = true
	a.search.cursor = 0
	return a, a.search.input.Focus()
}

func (a App) closeSearch() App {
	if a.search.cancel != nil {
		a.search.cancel()
	}
	a.search.active = false
	a.search.loading = false
	a.search.input.Blur()
	return a
}

// handleSearchKey routes keys while the modal is open.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return a.closeSearch(), tea.Quit

	case key.Matches(msg, keys.Escape):
		return a.closeSearch(), nil

	case msg.Type == tea.KeyUp:
		if a.search.cursor > 0 {
			a.search.cursor--
		}
		return a, nil

	case msg.Type == tea.KeyDown:
		if a.search.cursor < len(a.search.hits)-1 {
			a.search.cursor++
		}
		return a, nil

	case key.Matches(msg, keys.Enter):
		if r, ok := selectedRow(searchRows(a.search.hits), a.search.cursor); ok {
			a = a.closeSearch()
			return a.Navigate(*r.target)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.search.input, cmd = a.search.input.Update(msg)
	a, query := a.searchChanged()
	return a, tea.Batch(cmd, query)
}

// searchChanged issues a query when the trimmed term changed and is long
// enough. Shorter terms clear the results.
func (a App) searchChanged() (App, tea.Cmd) {
	term := strings.TrimSpace(a.search.input.Value())
	if term == a.search.term {
		return a, nil
	}
	a.search.term = term
	if a.search.cancel != nil {
		a.search.cancel()
		a.search.cancel = nil
	}
	a.search.seq++
	a.search.cursor = 0
	a.search.err = nil

	if utf8.RuneCountInString(term) < a.cfg.SearchMinLen || a.cfg.Search == nil {
		a.search.hits = nil
		a.search.loading = false
		return a, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.search.cancel = cancel
	a.search.loading = true
	a.cfg.Obs.Logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearch, Comp: "ui", Msg: term})

	search, seq := a.cfg.Search, a.search.seq
	return a, func() tea.Msg {
		hits, err := search(ctx, term)
		return SearchResults{Seq: seq, Term: term, Hits: hits, Err: err}
	}
}

func (a App) applySearch(msg SearchResults) App {
	if msg.Seq != a.search.seq {
		return a
	}
	a.search.loading = false
	if msg.Err != nil {
		if !wp.IsCancelled(msg.Err) {
			logging.Warn("search failed", "term", msg.Term, "err", msg.Err)
			a.search.err = msg.Err
		}
		return a
	}
	a.search.hits = msg.Hits
	a.search.cursor = 0
	return a
}

func (a App) renderSearch() string {
	width := a.width - 4
	if width > 80 {
		width = 80
	}
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(a.search.input.View())
	b.WriteString("\n")

	term := a.search.term
	switch {
	case utf8.RuneCountInString(term) < a.cfg.SearchMinLen:
		b.WriteString(SearchCount.Render(fmt.Sprintf("Type at least %d characters", a.cfg.SearchMinLen)))
	case a.search.loading:
		b.WriteString(SearchCount.Render(a.spinner.View() + " Searching..."))
	case a.search.err != nil:
		b.WriteString(ErrorStyle.Render("Search unavailable"))
	case len(a.search.hits) == 0:
		b.WriteString(SearchCount.Render("No results"))
	default:
		rows := searchRows(a.search.hits)
		b.WriteString(renderRows(rows, a.search.cursor, width-2, a.contentHeight()-5))
	}
	return SearchModal.Width(width).Render(b.String())
}
