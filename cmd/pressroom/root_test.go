package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abelbrown/pressroom/internal/wp"
)

// fakeAPI serves a two-category blog. Media 30 is missing.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	routes := map[string]string{
		"/categories": `[{"id":1,"name":"Tech","slug":"tech"},{"id":2,"name":"Life &amp; Home","slug":"life"}]`,
		"/posts/11":   `{"id":11,"title":{"rendered":"Go 1.24"},"content":{"rendered":"<h2>New</h2><p>Generic <b>aliases</b>.</p><script>x()</script>"},"featured_media":10}`,
		"/media/10":   `{"id":10,"source_url":"https://cdn.example/10.jpg"}`,
		"/media/20":   `{"id":20,"source_url":"https://cdn.example/20.jpg"}`,
		"/menu":       `[{"ID":1,"title":"Home","url":"/","menu_item_parent":"0"},{"ID":2,"title":"About","url":"/page/about","menu_item_parent":"1"}]`,
		"/logo":       `{"logo_url":"https://cdn.example/logo.png"}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		body, ok := routes[r.URL.Path]
		switch {
		case r.URL.Path == "/posts" && q.Get("categories") == "1":
			body, ok = `[{"id":11,"title":{"rendered":"Go 1.24"},"featured_media":10},
				{"id":12,"title":{"rendered":"Rust"},"featured_media":0},
				{"id":13,"title":{"rendered":"Zig"},"featured_media":10},
				{"id":14,"title":{"rendered":"Hidden"},"featured_media":40}]`, true
		case r.URL.Path == "/posts" && q.Get("categories") == "2":
			body, ok = `[{"id":21,"title":{"rendered":"Garden"},"featured_media":30}]`, true
		case r.URL.Path == "/posts" && q.Get("search") != "":
			body, ok = `[{"id":11,"slug":"go","title":{"rendered":"Go 1.24"}}]`, true
		case r.URL.Path == "/pages" && q.Get("slug") == "about":
			body, ok = `[{"id":5,"slug":"about","title":{"rendered":"About"},"content":{"rendered":"<p>We write.</p>"}}]`, true
		case r.URL.Path == "/pages":
			body, ok = `[]`, true
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// run executes the root command against srv with a missing config file.
func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--base-url", srv.URL,
	}, args...)
	rootCmd.SetArgs(full)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHomeCommand(t *testing.T) {
	out, err := run(t, fakeAPI(t), "home")
	if err != nil {
		t.Fatalf("home: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Tech (3 of 4)",
		"Life & Home (1 of 1)",
		"https://cdn.example/10.jpg",
		"/fallback-image.jpg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Hidden") {
		t.Errorf("post beyond the display count was printed:\n%s", out)
	}
}

func TestPostCommand(t *testing.T) {
	out, err := run(t, fakeAPI(t), "post", "11")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !strings.Contains(out, "Go 1.24") || !strings.Contains(out, "Generic aliases.") {
		t.Errorf("unexpected post output:\n%s", out)
	}
	if !strings.Contains(out, "[https://cdn.example/10.jpg]") {
		t.Errorf("expected resolved image, got:\n%s", out)
	}
	if strings.Contains(out, "x()") {
		t.Errorf("script content leaked:\n%s", out)
	}
}

func TestPostCommandRejectsBadID(t *testing.T) {
	if _, err := run(t, fakeAPI(t), "post", "abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if _, err := run(t, fakeAPI(t), "post", "0"); err == nil {
		t.Error("expected error for id 0")
	}
}

func TestCategoryCommand(t *testing.T) {
	out, err := run(t, fakeAPI(t), "category", "2")
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if !strings.Contains(out, "Life & Home") || !strings.Contains(out, "Garden") {
		t.Errorf("unexpected category output:\n%s", out)
	}
}

func TestPageCommand(t *testing.T) {
	srv := fakeAPI(t)
	out, err := run(t, srv, "page", "about")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if !strings.Contains(out, "We write.") {
		t.Errorf("unexpected page output:\n%s", out)
	}

	if _, err := run(t, srv, "page", "missing"); err == nil {
		t.Error("expected not-found error")
	}
}

func TestSearchCommand(t *testing.T) {
	srv := fakeAPI(t)
	if _, err := run(t, srv, "search", "go"); err == nil {
		t.Error("expected error for a term under the minimum length")
	}
	out, err := run(t, srv, "search", "go", "lang")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Go 1.24") {
		t.Errorf("unexpected search output:\n%s", out)
	}
}

func TestMenuCommand(t *testing.T) {
	out, err := run(t, fakeAPI(t), "menu")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	for _, want := range []string{"127.0.0.1 ▣", "Home  /", "    About  /page/about"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSiteLabel(t *testing.T) {
	tests := []struct {
		base  string
		logos []wp.Logo
		want  string
	}{
		{"https://blog.example/wp-json/wp/v2", nil, "blog.example"},
		{"https://blog.example/wp-json/wp/v2", []wp.Logo{{URL: ""}, {URL: "x.png"}}, "blog.example ▣"},
		{"::bad", nil, "pressroom"},
	}
	for _, tt := range tests {
		if got := siteLabel(tt.base, tt.logos); got != tt.want {
			t.Errorf("siteLabel(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "-1", "0", "4x"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q): expected error", bad)
		}
	}
}
