package route

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", Route{Kind: Home}},
		{"", Route{Kind: Home}},
		{"/post/12", Route{Kind: Post, ID: 12}},
		{"/post/12/", Route{Kind: Post, ID: 12}},
		{"/category/3?ref=nav", Route{Kind: Category, ID: 3}},
		{"/page/about-us", Route{Kind: Page, Slug: "about-us"}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := Parse(tc.path)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.path, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.path, got, tc.want)
			}
		})
	}
}

func TestParseNotFound(t *testing.T) {
	for _, path := range []string{
		"/post", "/post/abc", "/post/0", "/post/-1", "/category/", "/tag/go", "/post/1/extra", "/page/",
	} {
		if _, err := Parse(path); !errors.Is(err, ErrNotFound) {
			t.Errorf("Parse(%q) err = %v, want ErrNotFound", path, err)
		}
	}
}

func TestPathRoundTrip(t *testing.T) {
	for _, r := range []Route{
		{Kind: Home},
		{Kind: Post, ID: 7},
		{Kind: Category, ID: 2},
		{Kind: Page, Slug: "contact"},
	} {
		got, err := Parse(r.Path())
		if err != nil || got != r {
			t.Errorf("Parse(%q) = %+v, %v; want %+v", r.Path(), got, err, r)
		}
	}
}

func TestFromMenuURL(t *testing.T) {
	tests := []struct {
		url  string
		want Route
	}{
		{"https://example.com/2024/05/hello-world/", Route{Kind: Page, Slug: "hello-world"}},
		{"https://example.com/category/4", Route{Kind: Category, ID: 4}},
		{"https://example.com/about/", Route{Kind: Page, Slug: "about"}},
		{"/page/contact", Route{Kind: Page, Slug: "contact"}},
		{"https://example.com", Route{Kind: Home}},
	}
	for _, tc := range tests {
		got, err := FromMenuURL(tc.url)
		if err != nil || got != tc.want {
			t.Errorf("FromMenuURL(%q) = %+v, %v; want %+v", tc.url, got, err, tc.want)
		}
	}
}
