// Package route maps paths to the reader's views.
package route

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned for paths that match no view.
var ErrNotFound = errors.New("route not found")

// Kind identifies a view.
type Kind int

const (
	Home Kind = iota
	Post
	Category
	Page
)

func (k Kind) String() string {
	switch k {
	case Home:
		return "home"
	case Post:
		return "post"
	case Category:
		return "category"
	case Page:
		return "page"
	default:
		return "unknown"
	}
}

// Route is a parsed path. ID is set for Post and Category, Slug for Page.
type Route struct {
	Kind Kind
	ID   int
	Slug string
}

// Parse resolves a path such as "/post/12". A trailing slash and a query
// string are ignored.
func Parse(path string) (Route, error) {
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return Route{Kind: Home}, nil
	}

	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[1] == "" {
		return Route{}, fmt.Errorf("%q: %w", path, ErrNotFound)
	}
	switch parts[0] {
	case "post", "category":
		id, err := strconv.Atoi(parts[1])
		if err != nil || id <= 0 {
			return Route{}, fmt.Errorf("%q: %w", path, ErrNotFound)
		}
		kind := Post
		if parts[0] == "category" {
			kind = Category
		}
		return Route{Kind: kind, ID: id}, nil
	case "page":
		return Route{Kind: Page, Slug: parts[1]}, nil
	}
	return Route{}, fmt.Errorf("%q: %w", path, ErrNotFound)
}

// Path returns the canonical path for r.
func (r Route) Path() string {
	switch r.Kind {
	case Post:
		return "/post/" + strconv.Itoa(r.ID)
	case Category:
		return "/category/" + strconv.Itoa(r.ID)
	case Page:
		return "/page/" + r.Slug
	default:
		return "/"
	}
}

func (r Route) String() string {
	return r.Path()
}

// FromMenuURL maps a navigation menu URL to a route. Absolute URLs on any
// host are reduced to their path; anything unrecognised is treated as a
// page slug, the way menu entries usually point at pages.
func FromMenuURL(u string) (Route, error) {
	p := u
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
		if j := strings.IndexByte(p, '/'); j >= 0 {
			p = p[j:]
		} else {
			p = "/"
		}
	}
	if r, err := Parse(p); err == nil {
		return r, nil
	}
	trimmed := strings.Trim(p, "/")
	if trimmed == "" || strings.Contains(trimmed, "?") {
		return Route{}, fmt.Errorf("%q: %w", u, ErrNotFound)
	}
	parts := strings.Split(trimmed, "/")
	return Route{Kind: Page, Slug: parts[len(parts)-1]}, nil
}
