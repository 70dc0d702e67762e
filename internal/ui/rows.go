package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/pressroom/internal/aggregate"
	"github.com/abelbrown/pressroom/internal/richtext"
	"github.com/abelbrown/pressroom/internal/route"
	"github.com/abelbrown/pressroom/internal/wp"
)

// row is one rendered line of a list view. Rows with a target are
// selectable; the cursor counts selectable rows only.
type row struct {
	text   string
	badge  string
	meta   string
	marker string // media state: "▣" resolved, "·" pending
	image  string
	header bool
	target *route.Route
}

func headerRow(text string) row { return row{text: text, header: true} }

func hintRow(text string) row { return row{text: text} }

func postRow(p wp.Post, badge string, now time.Time) row {
	r := route.Route{Kind: route.Post, ID: p.ID}
	title := richtext.Text(p.Title.Rendered)
	if title == "" {
		title = "(untitled)"
	}
	return row{
		text:   title,
		badge:  badge,
		meta:   formatAgeShort(p.Date.Time, now),
		target: &r,
	}
}

// homeState is what the home view has received so far.
type homeState struct {
	feed       *aggregate.Feed
	feedErr    error
	plan       aggregate.Plan
	planReady  bool
	planFailed bool
	feedPage   int
}

// homeRows lays out the home page: hero, category sections, then the
// scrolling feed.
func homeRows(s homeState, now time.Time) []row {
	var rows []row

	rows = append(rows, headerRow("Latest"))
	switch {
	case s.feedErr != nil:
		rows = append(rows, hintRow("No content"))
	case s.feed == nil:
		rows = append(rows, hintRow("Loading..."))
	case len(s.feed.Posts) == 0:
		rows = append(rows, hintRow("No posts yet"))
	default:
		hero := s.feed.Hero
		lead := postRow(hero.Latest, s.feed.CategoryName(hero.Latest.PrimaryCategory()), now)
		lead.image = s.feed.ImageURL(hero.Latest)
		rows = append(rows, lead)
		for _, p := range hero.Recent {
			r := postRow(p, s.feed.CategoryName(p.PrimaryCategory()), now)
			r.image = s.feed.ImageURL(p)
			rows = append(rows, r)
		}
	}

	rows = append(rows, hintRow(""))
	switch {
	case s.planFailed:
		rows = append(rows, headerRow("Categories"), hintRow("No content"))
	case !s.planReady:
		rows = append(rows, headerRow("Categories"), hintRow("Loading..."))
	case s.plan.Empty():
		rows = append(rows, headerRow("Categories"), hintRow("No content"))
	default:
		for _, sec := range s.plan.Sections {
			name := richtext.Text(sec.Category.Name)
			cat := route.Route{Kind: route.Category, ID: sec.Category.ID}
			rows = append(rows, row{
				text:   name,
				meta:   fmt.Sprintf("%d of %d", sec.DisplayCount, sec.Available),
				header: true,
				target: &cat,
			})
			for _, p := range sec.Posts {
				r := postRow(p, "", now)
				r.marker = "·"
				if url, ok := s.plan.Media[p.FeaturedMedia]; ok {
					r.marker = "▣"
					r.image = url
				} else if p.FeaturedMedia <= 0 {
					r.marker = "▣"
					r.image = s.plan.Fallback
				}
				rows = append(rows, r)
			}
		}
	}

	if s.feed != nil && len(s.feed.Posts) > 0 {
		rows = append(rows, hintRow(""), headerRow("More posts"))
		for _, p := range s.feed.Visible(s.feedPage) {
			r := postRow(p, s.feed.CategoryName(p.PrimaryCategory()), now)
			r.image = s.feed.ImageURL(p)
			rows = append(rows, r)
		}
		if s.feed.HasMore(s.feedPage) {
			rows = append(rows, hintRow("m: load more"))
		}
	}
	return rows
}

// categoryRows lays out a category listing with a tab line of all
// categories.
func categoryRows(p aggregate.CategoryPage, now time.Time) []row {
	var tabs []string
	for _, c := range p.Categories {
		name := richtext.Text(c.Name)
		if c.ID == p.Active {
			name = "[" + name + "]"
		}
		tabs = append(tabs, name)
	}
	rows := []row{
		headerRow(p.CategoryName(p.Active)),
		hintRow(strings.Join(tabs, "  ")),
		hintRow(""),
	}
	if len(p.Posts) == 0 {
		return append(rows, hintRow("No posts in this category"))
	}
	for _, post := range p.Posts {
		r := postRow(post, p.CategoryName(post.PrimaryCategory()), now)
		r.image = p.MediaURL(post)
		r.marker = "▣"
		rows = append(rows, r)
	}
	return rows
}

// searchRows lists search hits.
func searchRows(hits []wp.SearchHit) []row {
	rows := make([]row, 0, len(hits))
	for _, h := range hits {
		r := route.Route{Kind: route.Post, ID: h.ID}
		rows = append(rows, row{
			text:   richtext.Text(h.Title.Rendered),
			meta:   richtext.Truncate(richtext.Text(h.Excerpt.Rendered), 40),
			target: &r,
		})
	}
	return rows
}

// selectable returns the indexes of rows that have a target.
func selectable(rows []row) []int {
	var idx []int
	for i, r := range rows {
		if r.target != nil {
			idx = append(idx, i)
		}
	}
	return idx
}

// selectedRow returns the row under cursor, if any.
func selectedRow(rows []row, cursor int) (row, bool) {
	idx := selectable(rows)
	if cursor < 0 || cursor >= len(idx) {
		return row{}, false
	}
	return rows[idx[cursor]], true
}

// renderRows renders rows into at most height lines, scrolled so that the
// cursor's row is visible.
func renderRows(rows []row, cursor, width, height int) string {
	if height < 1 {
		height = 1
	}
	sel := -1
	if idx := selectable(rows); cursor >= 0 && cursor < len(idx) {
		sel = idx[cursor]
	}
	offset := calcScrollOffset(sel, height)

	var b strings.Builder
	for i := offset; i < len(rows) && i < offset+height; i++ {
		b.WriteString(renderRow(rows[i], i == sel, width))
		b.WriteString("\n")
	}
	return b.String()
}

// calcScrollOffset returns the first row to draw so that row sel fits in
// height lines.
func calcScrollOffset(sel, height int) int {
	if sel >= height {
		return sel - height + 1
	}
	return 0
}

// renderRow renders one row: badge, title, a dot leader and the meta column.
func renderRow(r row, selected bool, width int) string {
	if r.header {
		line := SectionHeader.Render(r.text)
		if r.meta != "" {
			line += MetaItem.Render(" " + r.meta)
		}
		if selected {
			return SelectedItem.Render(r.text + "  " + r.meta)
		}
		return line
	}
	if r.target == nil {
		return MetaItem.Render("  " + r.text)
	}

	badge := ""
	if r.badge != "" {
		badge = CategoryBadge.Render(richtext.Truncate(r.badge, 16))
	}
	marker := ""
	if r.marker != "" {
		if r.marker == "▣" {
			marker = MediaReady.Render(r.marker) + " "
		} else {
			marker = MetaItem.Render(r.marker) + " "
		}
	}

	metaWidth := utf8.RuneCountInString(r.meta)
	titleWidth := width - lipgloss.Width(badge) - lipgloss.Width(marker) - metaWidth - 6
	if titleWidth < 20 {
		titleWidth = 20
	}
	title := richtext.Truncate(r.text, titleWidth)

	style := NormalItem
	if selected {
		style = SelectedItem
	}
	left := marker + badge + style.Render(title)
	dots := fadeDots(width - lipgloss.Width(left) - metaWidth - 1)
	return left + MetaItem.Render(dots) + " " + MetaItem.Render(r.meta)
}

func formatAgeShort(published, now time.Time) string {
	if published.IsZero() {
		return ""
	}
	age := now.Sub(published)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	default:
		return published.Format("Jan 2, 2006")
	}
}

// fadeDots returns a dot leader of count cells ending in a space.
func fadeDots(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat(".", count-1) + " "
}

// RenderStatusBar renders the bottom status bar: position or status text on
// the left, key hints on the right.
func RenderStatusBar(left string, hints []string, width int) string {
	keyHints := strings.Join(hints, " ")
	left = " " + left + " "
	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

func hint(key, desc string) string {
	return StatusBarKey.Render(key) + StatusBarText.Render(":"+desc)
}
