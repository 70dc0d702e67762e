package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/abelbrown/pressroom/internal/media"
	"github.com/abelbrown/pressroom/internal/wp"
)

func TestCategoryPage(t *testing.T) {
	f := techLife()
	f.media[1040] = "https://cdn/1040.jpg"
	e, _ := newTestEngine(f, Config{})

	page, err := e.Category(context.Background(), 1)
	if err != nil {
		t.Fatalf("Category: %v", err)
	}
	if page.Active != 1 || len(page.Categories) != 2 || len(page.Posts) != 5 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.MediaURL(page.Posts[3]) != "https://cdn/1040.jpg" {
		t.Errorf("expected resolved media, got %q", page.MediaURL(page.Posts[3]))
	}
	// 1050 has no media record.
	if page.MediaURL(page.Posts[4]) != media.DefaultFallbackURL {
		t.Errorf("expected fallback, got %q", page.MediaURL(page.Posts[4]))
	}
	if page.CategoryName(2) != "Life" || page.CategoryName(42) != "Uncategorized" {
		t.Error("unexpected category names")
	}
}

func TestCategoryPagePostsFailureIsEmpty(t *testing.T) {
	f := techLife()
	f.postsErr[1] = &wp.RequestError{Op: "posts_by_category", Status: 500}
	e, _ := newTestEngine(f, Config{})

	page, err := e.Category(context.Background(), 1)
	if err != nil {
		t.Fatalf("Category: %v", err)
	}
	if len(page.Posts) != 0 || len(page.Categories) != 2 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestPostUsesRoutedID(t *testing.T) {
	f := techLife()
	f.byID[55] = wp.Post{ID: 55, FeaturedMedia: 1010}
	f.byID[10] = wp.Post{ID: 10}
	e, _ := newTestEngine(f, Config{})

	page, err := e.Post(context.Background(), 55)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if page.Post.ID != 55 || page.ImageURL != "https://cdn/m.jpg" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestPostPrefersEmbeddedMedia(t *testing.T) {
	f := techLife()
	f.byID[5] = wp.Post{
		ID:            5,
		FeaturedMedia: 1010,
		Embedded:      wp.Embedded{FeaturedMedia: []wp.Media{{ID: 1010, SourceURL: "https://cdn/embedded.jpg"}}},
	}
	e, _ := newTestEngine(f, Config{})

	page, err := e.Post(context.Background(), 5)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if page.ImageURL != "https://cdn/embedded.jpg" {
		t.Errorf("expected embedded image, got %q", page.ImageURL)
	}
	if f.mediaCallCount() != 0 {
		t.Error("embedded media should avoid a media fetch")
	}
}

func TestPostNotFound(t *testing.T) {
	e, _ := newTestEngine(techLife(), Config{})
	_, err := e.Post(context.Background(), 404)
	if !errors.Is(err, wp.ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestLatestFeed(t *testing.T) {
	f := techLife()
	for i := 1; i <= 16; i++ {
		f.latest = append(f.latest, wp.Post{ID: i})
	}
	e, _ := newTestEngine(f, Config{})

	feed, err := e.Latest(context.Background(), 7)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if feed.Hero.Latest.ID != 1 || len(feed.Hero.Recent) != 4 || feed.Hero.Recent[0].ID != 2 {
		t.Errorf("unexpected hero %+v", feed.Hero)
	}

	tests := []struct {
		page    int
		visible int
		more    bool
	}{
		{0, 7, true},
		{1, 7, true},
		{2, 14, true},
		{3, 16, false},
	}
	for _, tc := range tests {
		if got := len(feed.Visible(tc.page)); got != tc.visible {
			t.Errorf("Visible(%d) = %d, want %d", tc.page, got, tc.visible)
		}
		if got := feed.HasMore(tc.page); got != tc.more {
			t.Errorf("HasMore(%d) = %v, want %v", tc.page, got, tc.more)
		}
	}
	if feed.ImageURL(feed.Posts[0]) != media.DefaultFallbackURL {
		t.Error("post without embedded media should use the fallback")
	}
}

func TestLatestFeedEmpty(t *testing.T) {
	e, _ := newTestEngine(newFakeSource(), Config{})
	feed, err := e.Latest(context.Background(), 7)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(feed.Visible(1)) != 0 || feed.HasMore(1) || len(feed.Hero.Recent) != 0 {
		t.Errorf("unexpected empty feed %+v", feed)
	}
}
