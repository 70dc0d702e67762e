// Package wp is a read-only client for a WordPress-style JSON content API.
//
// Every operation issues exactly one GET request. The client does not cache
// and does not retry; callers own both policies. Failures are reported as
// ErrRequestFailed, abandoned requests as ErrCancelled (see Classify).
package wp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/pressroom/internal/otel"
)

const userAgent = "pressroom/0.1 (+https://github.com/abelbrown/pressroom)"

// maxBodyBytes caps how much of a response body is decoded.
const maxBodyBytes = 16 << 20

// Client issues requests against a content API rooted at a base URL such as
// https://example.com/wp-json/wp/v2.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *otel.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit caps outgoing requests per second. rps <= 0 means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger attaches an event logger.
func WithLogger(l *otel.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client. timeout is the transport timeout of the
// default http.Client; individual requests have no other deadline.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Posts returns the latest posts with embedded expansions.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := c.get(ctx, "posts", "/posts", nil, true, &posts)
	return posts, err
}

// PostByID returns a single post with embedded expansions.
func (c *Client) PostByID(ctx context.Context, id int) (Post, error) {
	var post Post
	err := c.get(ctx, "post", "/posts/"+strconv.Itoa(id), nil, true, &post)
	return post, err
}

// PostsByCategory returns the posts filed under categoryID.
func (c *Client) PostsByCategory(ctx context.Context, categoryID int) ([]Post, error) {
	q := url.Values{"categories": {strconv.Itoa(categoryID)}}
	var posts []Post
	err := c.get(ctx, "posts_by_category", "/posts", q, true, &posts)
	return posts, err
}

// Categories returns all categories in API order.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	err := c.get(ctx, "categories", "/categories", nil, false, &cats)
	return cats, err
}

// Media returns a media record by id.
func (c *Client) Media(ctx context.Context, id int) (Media, error) {
	var m Media
	err := c.get(ctx, "media", "/media/"+strconv.Itoa(id), nil, false, &m)
	return m, err
}

// Menu returns the flat list of navigation menu items.
func (c *Client) Menu(ctx context.Context) ([]MenuItem, error) {
	var items []MenuItem
	err := c.get(ctx, "menu", "/menu", nil, false, &items)
	return items, err
}

// PageBySlug returns the first page with the given slug, or ErrNotFound.
func (c *Client) PageBySlug(ctx context.Context, slug string) (Page, error) {
	q := url.Values{"slug": {slug}}
	var pages []Page
	if err := c.get(ctx, "page", "/pages", q, false, &pages); err != nil {
		return Page{}, err
	}
	if len(pages) == 0 {
		return Page{}, fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}
	return pages[0], nil
}

// Logo returns the site logo entries. The resource may answer with a single
// object or an array; both decode to a slice.
func (c *Client) Logo(ctx context.Context) ([]Logo, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "logo", "/logo", nil, false, &raw); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var logos []Logo
		if err := json.Unmarshal(raw, &logos); err != nil {
			return nil, &RequestError{Op: "logo", URL: c.baseURL + "/logo", Err: err}
		}
		return logos, nil
	}
	if trimmed == "null" || trimmed == "" {
		return nil, nil
	}
	var logo Logo
	if err := json.Unmarshal(raw, &logo); err != nil {
		return nil, &RequestError{Op: "logo", URL: c.baseURL + "/logo", Err: err}
	}
	return []Logo{logo}, nil
}

// Search returns posts matching a free-text term, trimmed to id, title,
// slug and excerpt.
func (c *Client) Search(ctx context.Context, term string) ([]SearchHit, error) {
	q := url.Values{
		"search":  {term},
		"_fields": {"id,title,slug,excerpt"},
	}
	var hits []SearchHit
	err := c.get(ctx, "search", "/posts", q, false, &hits)
	return hits, err
}

// get performs one GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, q url.Values, embed bool, out any) error {
	if ctx.Err() != nil {
		return cancelled(op, ctx)
	}

	u := c.baseURL + path
	if query := encodeQuery(q, embed); query != "" {
		u += "?" + query
	}

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return cancelled(op, ctx)
		}
		return &RequestError{Op: op, URL: u, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &RequestError{Op: op, URL: u, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "wp", Path: path, Msg: op})

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, op, path, u, 0, err, start)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return c.fail(ctx, op, path, u, resp.StatusCode, nil, start)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return c.fail(ctx, op, path, u, 0, fmt.Errorf("decode: %w", err), start)
	}

	c.logger.Emit(otel.Event{
		Level:  otel.LevelDebug,
		Kind:   otel.KindFetchComplete,
		Comp:   "wp",
		Path:   path,
		Status: resp.StatusCode,
		Dur:    time.Since(start),
	})
	return nil
}

// fail builds the error for a request that did not succeed, preferring
// cancellation when the context has ended.
func (c *Client) fail(ctx context.Context, op, path, u string, status int, cause error, start time.Time) error {
	if ctx.Err() != nil {
		c.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchCancel, Comp: "wp", Path: path, Dur: time.Since(start)})
		return cancelled(op, ctx)
	}
	rerr := &RequestError{Op: op, URL: u, Status: status, Err: cause}
	c.logger.Emit(otel.Event{
		Level:  otel.LevelWarn,
		Kind:   otel.KindFetchError,
		Comp:   "wp",
		Path:   path,
		Status: status,
		Dur:    time.Since(start),
		Err:    rerr.Error(),
	})
	return rerr
}

// encodeQuery encodes q and appends the bare _embed flag when requested.
func encodeQuery(q url.Values, embed bool) string {
	s := q.Encode()
	if !embed {
		return s
	}
	if s == "" {
		return "_embed"
	}
	return s + "&_embed"
}
