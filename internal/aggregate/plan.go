package aggregate

import (
	"time"

	"github.com/abelbrown/pressroom/internal/wp"
)

// alternating display counts by category position when no override exists.
var defaultCounts = [2]int{3, 2}

// Section is one category block on the home page.
type Section struct {
	Category     wp.Category
	Posts        []wp.Post // posts to display, at most DisplayCount
	DisplayCount int
	Available    int // posts fetched for the category
}

// Plan is the render-ready result of a cycle: category sections in API order
// and the media URLs resolved for the displayed posts.
type Plan struct {
	Sections  []Section
	Media     map[int]string
	FetchedAt time.Time
	Fallback  string
}

// MediaURL returns the resolved URL for a media id, or the fallback if the
// id is unknown or not yet resolved.
func (p Plan) MediaURL(id int) string {
	if url, ok := p.Media[id]; ok && url != "" {
		return url
	}
	return p.Fallback
}

// Empty reports whether the plan has nothing to display.
func (p Plan) Empty() bool {
	for _, s := range p.Sections {
		if len(s.Posts) > 0 {
			return false
		}
	}
	return true
}

// clone returns a copy whose Media map can be mutated independently.
func (p Plan) clone() Plan {
	media := make(map[int]string, len(p.Media))
	for k, v := range p.Media {
		media[k] = v
	}
	p.Media = media
	return p
}

// displayCount returns how many posts to show for the category at index i.
// An override applies only when positive.
func displayCount(overrides map[int]int, cat wp.Category, i, available int) int {
	n := defaultCounts[i%2]
	if o := overrides[cat.ID]; o > 0 {
		n = o
	}
	return min(n, available)
}

// buildSections derives sections from fetched posts and collects the
// distinct featured-media ids of the displayed posts, in display order.
func buildSections(cats []wp.Category, posts map[int][]wp.Post, overrides map[int]int) ([]Section, []int) {
	sections := make([]Section, 0, len(cats))
	var ids []int
	seen := make(map[int]bool)
	for i, cat := range cats {
		all := posts[cat.ID]
		n := displayCount(overrides, cat, i, len(all))
		shown := all[:n:n]
		for _, p := range shown {
			if p.FeaturedMedia > 0 && !seen[p.FeaturedMedia] {
				seen[p.FeaturedMedia] = true
				ids = append(ids, p.FeaturedMedia)
			}
		}
		sections = append(sections, Section{
			Category:     cat,
			Posts:        shown,
			DisplayCount: n,
			Available:    len(all),
		})
	}
	return sections, ids
}
