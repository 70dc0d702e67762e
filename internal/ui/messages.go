// Package ui provides the Bubble Tea TUI for pressroom.
package ui

import (
	"github.com/abelbrown/pressroom/internal/aggregate"
	"github.com/abelbrown/pressroom/internal/wp"
)

// NavLoaded is sent when the menu and logo have been fetched.
type NavLoaded struct {
	Menu []wp.MenuEntry
	Logo string
	Err  error
}

// FeedLoaded is sent when the hero and scrolling feed are ready.
type FeedLoaded struct {
	Seq  uint64
	Feed aggregate.Feed
	Err  error
}

// PlanUpdated carries a partial or final category plan. Partial updates
// arrive through AppConfig.Send while media is still resolving.
type PlanUpdated struct {
	Seq   uint64
	Plan  aggregate.Plan
	Final bool
	Err   error
}

// CategoryLoaded is sent when a category listing is ready.
type CategoryLoaded struct {
	Seq  uint64
	Page aggregate.CategoryPage
	Err  error
}

// PostLoaded is sent when a post is ready.
type PostLoaded struct {
	Seq  uint64
	Page aggregate.PostPage
	Err  error
}

// PageLoaded is sent when a static page is ready.
type PageLoaded struct {
	Seq  uint64
	Page wp.Page
	Err  error
}

// SearchResults is sent when a search query returns. Term is the query that
// produced the hits, for stale checks.
type SearchResults struct {
	Seq  uint64
	Term string
	Hits []wp.SearchHit
	Err  error
}
