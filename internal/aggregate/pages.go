package aggregate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/pressroom/internal/wp"
)

// CategoryPage is the category listing: every category for navigation and
// the posts of the active one.
type CategoryPage struct {
	Active     int
	Categories []wp.Category
	Posts      []wp.Post
	Media      map[int]string
	Fallback   string
}

// MediaURL returns the image for a post on the page.
func (p CategoryPage) MediaURL(post wp.Post) string {
	if url := p.Media[post.FeaturedMedia]; url != "" {
		return url
	}
	return p.Fallback
}

// CategoryName returns the name of category id, or "Uncategorized".
func (p CategoryPage) CategoryName(id int) string {
	return categoryName(p.Categories, id)
}

// PostPage is a single post with its image.
type PostPage struct {
	Post     wp.Post
	ImageURL string
}

// Hero is the lead post and the ones directly after it.
type Hero struct {
	Latest wp.Post
	Recent []wp.Post
}

// Feed is the latest-posts view: hero plus a paginated list.
type Feed struct {
	Hero       Hero
	Posts      []wp.Post
	Categories []wp.Category
	PerPage    int
	Fallback   string
}

// Visible returns the posts shown after page loads (page >= 1).
func (f Feed) Visible(page int) []wp.Post {
	if page < 1 {
		page = 1
	}
	n := min(page*f.PerPage, len(f.Posts))
	return f.Posts[:n]
}

// HasMore reports whether another page can be loaded.
func (f Feed) HasMore(page int) bool {
	return len(f.Visible(page)) < len(f.Posts)
}

// ImageURL returns a post's embedded featured image or the fallback.
func (f Feed) ImageURL(p wp.Post) string {
	if url := p.EmbeddedMediaURL(); url != "" {
		return url
	}
	return f.Fallback
}

// CategoryName returns the name of category id, or "Uncategorized".
func (f Feed) CategoryName(id int) string {
	return categoryName(f.Categories, id)
}

// Category loads the listing for category id. The posts and the full
// category list are fetched concurrently; a failed post fetch yields an
// empty listing. Media for every listed post goes through the resolver.
func (e *Engine) Category(ctx context.Context, id int) (CategoryPage, error) {
	page := CategoryPage{Active: id, Fallback: e.resolver.Fallback()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := e.src.Categories(gctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		page.Categories = cats
		return nil
	})
	g.Go(func() error {
		posts, err := e.src.PostsByCategory(gctx, id)
		if err != nil {
			if wp.IsCancelled(err) {
				return err
			}
			return nil
		}
		page.Posts = posts
		return nil
	})
	if err := g.Wait(); err != nil {
		return CategoryPage{}, err
	}

	ids := make([]int, 0, len(page.Posts))
	for _, p := range page.Posts {
		ids = append(ids, p.FeaturedMedia)
	}
	media, err := e.resolver.Resolve(ctx, ids, nil)
	if err != nil {
		return CategoryPage{}, err
	}
	page.Media = media
	return page, nil
}

// Post loads post id and resolves its featured image, preferring the
// embedded expansion over a media lookup.
func (e *Engine) Post(ctx context.Context, id int) (PostPage, error) {
	post, err := e.src.PostByID(ctx, id)
	if err != nil {
		return PostPage{}, err
	}
	page := PostPage{Post: post, ImageURL: post.EmbeddedMediaURL()}
	if page.ImageURL != "" {
		return page, nil
	}
	page.ImageURL = e.resolver.Fallback()
	if post.FeaturedMedia > 0 {
		media, err := e.resolver.Resolve(ctx, []int{post.FeaturedMedia}, nil)
		if err != nil {
			return PostPage{}, err
		}
		if url := media[post.FeaturedMedia]; url != "" {
			page.ImageURL = url
		}
	}
	return page, nil
}

// Latest loads the hero and the scrolling feed. Posts and categories are
// fetched concurrently; either failing fails the load.
func (e *Engine) Latest(ctx context.Context, perPage int) (Feed, error) {
	if perPage <= 0 {
		perPage = 7
	}
	feed := Feed{PerPage: perPage, Fallback: e.resolver.Fallback()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := e.src.Posts(gctx)
		if err != nil {
			return fmt.Errorf("posts: %w", err)
		}
		feed.Posts = posts
		return nil
	})
	g.Go(func() error {
		cats, err := e.src.Categories(gctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		feed.Categories = cats
		return nil
	})
	if err := g.Wait(); err != nil {
		return Feed{}, err
	}

	if len(feed.Posts) > 0 {
		feed.Hero.Latest = feed.Posts[0]
		rest := feed.Posts[1:]
		feed.Hero.Recent = rest[:min(e.cfg.RecentPosts, len(rest))]
	}
	return feed, nil
}

func categoryName(cats []wp.Category, id int) string {
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return "Uncategorized"
}
