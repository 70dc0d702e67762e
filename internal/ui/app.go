package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/pressroom/internal/aggregate"
	"github.com/abelbrown/pressroom/internal/logging"
	"github.com/abelbrown/pressroom/internal/otel"
	"github.com/abelbrown/pressroom/internal/route"
	"github.com/abelbrown/pressroom/internal/wp"
)

// ObsConfig groups observability dependencies.
type ObsConfig struct {
	Ring   *otel.RingBuffer
	Logger *otel.Logger
}

// AppConfig injects the data operations the App runs as commands.
// Nil operations leave the corresponding view empty.
type AppConfig struct {
	Refresh    func(ctx context.Context, progress func(aggregate.Plan)) (aggregate.Plan, error)
	Latest     func(ctx context.Context) (aggregate.Feed, error)
	Category   func(ctx context.Context, id int) (aggregate.CategoryPage, error)
	Post       func(ctx context.Context, id int) (aggregate.PostPage, error)
	Page       func(ctx context.Context, slug string) (wp.Page, error)
	Search     func(ctx context.Context, term string) ([]wp.SearchHit, error)
	Nav        func(ctx context.Context) ([]wp.MenuEntry, string, error)
	Invalidate func()

	// Send delivers messages from running commands, such as partial plans.
	// Usually (*tea.Program).Send; nil drops them.
	Send func(tea.Msg)

	Obs          ObsConfig
	SearchMinLen int
	Start        route.Route
	Now          func() time.Time
}

// App is the root Bubble Tea model.
// App does not hold the content client; it receives data via messages.
type App struct {
	cfg AppConfig

	route   route.Route
	history []route.Route

	// Every view load gets a sequence number and its own cancel func.
	// Results carrying an older sequence are dropped. initCtx belongs to
	// the start route's load, which Init issues under sequence 0.
	seq     uint64
	cancel  context.CancelFunc
	initCtx context.Context

	home     homeState
	category *aggregate.CategoryPage
	article  bool
	viewErr  error
	body     viewport.Model

	menu []wp.MenuEntry
	logo string

	search searchState

	cursor       int
	debugVisible bool
	spinner      spinner.Model
	loading      bool
	width        int
	height       int
	ready        bool
}

// NewAppWithConfig creates an App.
func NewAppWithConfig(cfg AppConfig) App {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SearchMinLen <= 0 {
		cfg.SearchMinLen = 3
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusBarKey

	ti := textinput.New()
	ti.Placeholder = "Search posts"
	ti.Prompt = SearchPrompt.Render("/ ")
	ti.CharLimit = 120

	ctx, cancel := context.WithCancel(context.Background())
	return App{
		cfg:     cfg,
		route:   cfg.Start,
		cancel:  cancel,
		initCtx: ctx,
		loading: true,
		spinner: s,
		body:    viewport.New(80, 20),
		search:  searchState{input: ti},
	}
}

// Init loads the navigation bar and the start route.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.cfg.Nav != nil {
		nav := a.cfg.Nav
		cmds = append(cmds, func() tea.Msg {
			menu, logo, err := nav(context.Background())
			return NavLoaded{Menu: menu, Logo: logo, Err: err}
		})
	}
	cmds = append(cmds, a.loadCmds(a.initCtx, 0)...)
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.cfg.Obs.Logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.search.active {
			return a.handleSearchKey(msg)
		}
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.body.Width = msg.Width
		a.body.Height = a.contentHeight()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case NavLoaded:
		if msg.Err != nil {
			logging.Warn("navigation unavailable", "err", msg.Err)
			return a, nil
		}
		a.menu = msg.Menu
		a.logo = msg.Logo
		return a, nil

	case FeedLoaded:
		if msg.Seq != a.seq || a.route.Kind != route.Home {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			if !wp.IsCancelled(msg.Err) {
				logging.Warn("feed unavailable", "err", msg.Err)
				a.home.feedErr = msg.Err
			}
			return a, nil
		}
		feed := msg.Feed
		a.home.feed = &feed
		if a.home.feedPage < 1 {
			a.home.feedPage = 1
		}
		return a, nil

	case PlanUpdated:
		if msg.Seq != a.seq || a.route.Kind != route.Home {
			a.cfg.Obs.Logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindCycleStale, Comp: "ui", Msg: "dropped plan for an older view"})
			return a, nil
		}
		return a.applyPlan(msg), nil

	case CategoryLoaded:
		if msg.Seq != a.seq || a.route.Kind != route.Category {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			return a.loadFailed("category", msg.Err), nil
		}
		page := msg.Page
		a.category = &page
		return a, nil

	case PostLoaded:
		if msg.Seq != a.seq || a.route.Kind != route.Post {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			return a.loadFailed("post", msg.Err), nil
		}
		p := msg.Page.Post
		meta := formatAgeShort(p.Date.Time, a.cfg.Now())
		a.setArticle(articleContent(p.Title.Rendered, meta, msg.Page.ImageURL, p.Content.Rendered, a.width))
		return a, nil

	case PageLoaded:
		if msg.Seq != a.seq || a.route.Kind != route.Page {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			return a.loadFailed("page", msg.Err), nil
		}
		a.setArticle(articleContent(msg.Page.Title.Rendered, "", "", msg.Page.Content.Rendered, a.width))
		return a, nil

	case SearchResults:
		return a.applySearch(msg), nil
	}

	return a, nil
}

// applyPlan folds a plan update into the home view.
func (a App) applyPlan(msg PlanUpdated) App {
	if msg.Final {
		a.loading = false
	}
	if msg.Err != nil {
		switch {
		case wp.IsCancelled(msg.Err), errors.Is(msg.Err, aggregate.ErrSuperseded):
			// A newer result is on its way or already shown.
		default:
			logging.Warn("category plan unavailable", "err", msg.Err)
			a.home.planFailed = true
		}
		return a
	}
	if !msg.Final && a.home.planReady && len(msg.Plan.Media) < len(a.home.plan.Media) {
		return a
	}
	a.home.plan = msg.Plan
	a.home.planReady = true
	a.home.planFailed = false
	return a
}

func (a App) loadFailed(what string, err error) App {
	if wp.IsCancelled(err) {
		return a
	}
	logging.Warn("load failed", "view", what, "err", err)
	a.viewErr = err
	return a
}

func (a *App) setArticle(content string) {
	a.article = true
	a.body.Width = a.width
	a.body.Height = a.contentHeight()
	a.body.SetContent(content)
	a.body.GotoTop()
}

// handleKeyMsg processes keyboard input outside the search modal.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit

	case key.Matches(msg, keys.Debug):
		a.debugVisible = !a.debugVisible
		return a, nil

	case key.Matches(msg, keys.Search):
		return a.openSearch()

	case key.Matches(msg, keys.Up):
		if a.article {
			a.body.LineUp(1)
		} else if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, keys.Down):
		if a.article {
			a.body.LineDown(1)
		} else if a.cursor < len(selectable(a.rows()))-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, keys.Enter):
		if r, ok := selectedRow(a.rows(), a.cursor); ok {
			return a.Navigate(*r.target)
		}
		return a, nil

	case key.Matches(msg, keys.Back):
		return a.back()

	case key.Matches(msg, keys.Home):
		return a.Navigate(route.Route{Kind: route.Home})

	case key.Matches(msg, keys.LoadMore):
		if a.route.Kind == route.Home && a.home.feed != nil && a.home.feed.HasMore(a.home.feedPage) {
			a.home.feedPage++
		}
		return a, nil

	case key.Matches(msg, keys.Refresh):
		if a.cfg.Invalidate != nil {
			a.cfg.Invalidate()
		}
		return a.reload()

	case key.Matches(msg, keys.PrevCat):
		return a.switchCategory(-1)

	case key.Matches(msg, keys.NextCat):
		return a.switchCategory(1)
	}

	// 1-9 open top-level menu entries.
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		i := int(s[0] - '1')
		if i < len(a.menu) {
			if r, err := route.FromMenuURL(a.menu[i].Item.URL); err == nil {
				return a.Navigate(r)
			}
		}
	}
	return a, nil
}

// Navigate switches to r, cancelling the load of the current view.
func (a App) Navigate(r route.Route) (App, tea.Cmd) {
	if r == a.route && a.loading {
		return a, nil
	}
	a.history = append(a.history, a.route)
	return a.open(r)
}

func (a App) back() (App, tea.Cmd) {
	if len(a.history) == 0 {
		return a, nil
	}
	prev := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
	return a.open(prev)
}

func (a App) reload() (App, tea.Cmd) {
	return a.open(a.route)
}

func (a App) open(r route.Route) (App, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.seq++

	a.route = r
	a.cursor = 0
	a.home = homeState{}
	a.category = nil
	a.article = false
	a.viewErr = nil
	a.loading = true

	a.cfg.Obs.Logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindNavigate, Comp: "ui", Path: r.Path()})
	return a, tea.Batch(a.loadCmds(ctx, a.seq)...)
}

// loadCmds returns the commands that load the current route.
func (a App) loadCmds(ctx context.Context, seq uint64) []tea.Cmd {
	cfg := a.cfg
	switch a.route.Kind {
	case route.Home:
		var cmds []tea.Cmd
		if cfg.Latest != nil {
			cmds = append(cmds, func() tea.Msg {
				feed, err := cfg.Latest(ctx)
				return FeedLoaded{Seq: seq, Feed: feed, Err: err}
			})
		}
		if cfg.Refresh != nil {
			cmds = append(cmds, func() tea.Msg {
				plan, err := cfg.Refresh(ctx, func(p aggregate.Plan) {
					if cfg.Send != nil && ctx.Err() == nil {
						cfg.Send(PlanUpdated{Seq: seq, Plan: p})
					}
				})
				return PlanUpdated{Seq: seq, Plan: plan, Final: true, Err: err}
			})
		}
		return cmds

	case route.Category:
		if cfg.Category == nil {
			return nil
		}
		id := a.route.ID
		return []tea.Cmd{func() tea.Msg {
			page, err := cfg.Category(ctx, id)
			return CategoryLoaded{Seq: seq, Page: page, Err: err}
		}}

	case route.Post:
		if cfg.Post == nil {
			return nil
		}
		id := a.route.ID
		return []tea.Cmd{func() tea.Msg {
			page, err := cfg.Post(ctx, id)
			return PostLoaded{Seq: seq, Page: page, Err: err}
		}}

	case route.Page:
		if cfg.Page == nil {
			return nil
		}
		slug := a.route.Slug
		return []tea.Cmd{func() tea.Msg {
			page, err := cfg.Page(ctx, slug)
			return PageLoaded{Seq: seq, Page: page, Err: err}
		}}
	}
	return nil
}

func (a App) switchCategory(delta int) (App, tea.Cmd) {
	if a.route.Kind != route.Category || a.category == nil || len(a.category.Categories) == 0 {
		return a, nil
	}
	cats := a.category.Categories
	idx := 0
	for i, c := range cats {
		if c.ID == a.category.Active {
			idx = i
			break
		}
	}
	next := (idx + delta + len(cats)) % len(cats)
	return a.Navigate(route.Route{Kind: route.Category, ID: cats[next].ID})
}

// rows returns the list rows of the current view, or nil for article views.
func (a App) rows() []row {
	switch a.route.Kind {
	case route.Home:
		return homeRows(a.home, a.cfg.Now())
	case route.Category:
		if a.category != nil {
			return categoryRows(*a.category, a.cfg.Now())
		}
	}
	return nil
}

// contentHeight is the height between the navbar and the status bar.
func (a App) contentHeight() int {
	h := a.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.debugVisible {
		return debugOverlay(a.cfg.Obs.Ring, a.width, a.height-1, a.cfg.Now()) + "\n" + debugStatusBar(a.width)
	}

	var b strings.Builder
	b.WriteString(a.renderNavbar())
	b.WriteString("\n")

	switch {
	case a.search.active:
		b.WriteString(a.renderSearch())
	case a.viewErr != nil:
		b.WriteString(a.renderError())
	case a.article:
		b.WriteString(a.body.View())
	case a.loading && a.route.Kind != route.Home:
		b.WriteString(HelpStyle.Render(a.spinner.View() + " Loading..."))
	case a.route.Kind == route.Home || a.category != nil:
		b.WriteString(renderRows(a.rows(), a.cursor, a.width, a.contentHeight()))
	default:
		b.WriteString(HelpStyle.Render("No content"))
	}
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a App) renderNavbar() string {
	logo := a.logo
	if logo == "" {
		logo = "pressroom"
	}
	parts := []string{NavbarLogo.Render(logo)}
	for i, entry := range a.menu {
		if i >= 9 {
			break
		}
		label := fmt.Sprintf("%d %s", i+1, entry.Item.Title)
		if n := len(entry.Children); n > 0 {
			label += fmt.Sprintf(" (+%d)", n)
		}
		parts = append(parts, NavbarItem.Render(label))
	}
	return Navbar.Width(a.width).Render(strings.Join(parts, "  "))
}

func (a App) renderError() string {
	switch {
	case errors.Is(a.viewErr, wp.ErrNotFound):
		return HelpStyle.Render("Not found")
	case errors.Is(a.viewErr, aggregate.ErrCycleFailed):
		return HelpStyle.Render("No content")
	default:
		return HelpStyle.Render(fmt.Sprintf("Could not load this %s. Press r to retry.", a.route.Kind))
	}
}

func (a App) renderStatusBar() string {
	left := a.route.Path()
	if a.loading {
		left = a.spinner.View() + " " + left
	}
	if r, ok := selectedRow(a.rows(), a.cursor); ok && r.image != "" {
		left += "  " + r.image
	}
	hints := []string{
		hint("j/k", "nav"),
		hint("enter", "open"),
		hint("esc", "back"),
		hint("/", "search"),
	}
	switch a.route.Kind {
	case route.Home:
		hints = append(hints, hint("m", "more"), hint("r", "refresh"))
	case route.Category:
		hints = append(hints, hint("h/l", "category"))
	}
	hints = append(hints, hint("q", "quit"))
	return RenderStatusBar(left, hints, a.width)
}

// Route returns the current route (for testing).
func (a App) Route() route.Route {
	return a.route
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}
