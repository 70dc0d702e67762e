package wp

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Rendered is a rich-text field: a string of pre-rendered markup.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Category is a post category. Identity is ID.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count,omitempty"`
}

// Post is a blog post. FeaturedMedia is 0 when the post has none.
type Post struct {
	ID            int      `json:"id"`
	Date          Time     `json:"date"`
	Slug          string   `json:"slug"`
	Title         Rendered `json:"title"`
	Excerpt       Rendered `json:"excerpt"`
	Content       Rendered `json:"content"`
	FeaturedMedia int      `json:"featured_media"`
	Categories    []int    `json:"categories"`
	Embedded      Embedded `json:"_embedded"`
}

// Embedded holds the subset of _embed expansions the reader uses.
type Embedded struct {
	FeaturedMedia []Media `json:"wp:featuredmedia,omitempty"`
}

// EmbeddedMediaURL returns the source URL of the embedded featured media,
// or "" when the response was not expanded or the media is missing.
func (p Post) EmbeddedMediaURL() string {
	if len(p.Embedded.FeaturedMedia) == 0 {
		return ""
	}
	return p.Embedded.FeaturedMedia[0].SourceURL
}

// PrimaryCategory returns the first category id, or 0.
func (p Post) PrimaryCategory() int {
	if len(p.Categories) == 0 {
		return 0
	}
	return p.Categories[0]
}

// Media is a media attachment.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// Page is a static page.
type Page struct {
	ID      int      `json:"id"`
	Slug    string   `json:"slug"`
	Title   Rendered `json:"title"`
	Content Rendered `json:"content"`
}

// MenuItem is an entry of the custom menu resource. Parent is "0" for
// top-level items, otherwise the parent's ID.
type MenuItem struct {
	ID     int        `json:"ID"`
	Title  string     `json:"title"`
	URL    string     `json:"url"`
	Parent MenuParent `json:"menu_item_parent"`
}

// Logo is an entry of the custom logo resource.
type Logo struct {
	URL string `json:"logo_url"`
}

// SearchHit is a post trimmed to the fields requested by Search.
type SearchHit struct {
	ID      int      `json:"id"`
	Slug    string   `json:"slug"`
	Title   Rendered `json:"title"`
	Excerpt Rendered `json:"excerpt"`
}

// wpTimeLayout is the zoneless layout of the "date" field.
const wpTimeLayout = "2006-01-02T15:04:05"

// Time decodes WordPress dates, which carry no zone. RFC 3339 is accepted too.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(wpTimeLayout, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(wpTimeLayout))
}

// MenuParent is the parent reference of a menu item; the API sends it as
// a string but some installs emit a number.
type MenuParent string

func (f *MenuParent) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = MenuParent(s)
		return nil
	}
	*f = MenuParent(strings.TrimSpace(string(b)))
	return nil
}

// MenuEntry is a top-level menu item with its children.
type MenuEntry struct {
	Item     MenuItem
	Children []MenuItem
}

// MenuTree groups items into top-level entries (parent "0") with their
// direct children, preserving API order.
func MenuTree(items []MenuItem) []MenuEntry {
	var tree []MenuEntry
	for _, parent := range items {
		if parent.Parent != "0" {
			continue
		}
		entry := MenuEntry{Item: parent}
		id := strconv.Itoa(parent.ID)
		for _, child := range items {
			if string(child.Parent) == id {
				entry.Children = append(entry.Children, child)
			}
		}
		tree = append(tree, entry)
	}
	return tree
}
