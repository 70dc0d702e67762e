package e2e

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// newFixtureAPI serves a small deterministic blog for UI tests.
func newFixtureAPI(t *testing.T) *httptest.Server {
	t.Helper()
	const latest = `[
		{"id":1,"date":"2024-05-01T10:00:00","title":{"rendered":"Fixture Post One"},"featured_media":100,"categories":[1],
		 "_embedded":{"wp:featuredmedia":[{"id":100,"source_url":"https://cdn.example/100.jpg"}]}},
		{"id":2,"date":"2024-04-30T10:00:00","title":{"rendered":"Garden Notes"},"featured_media":0,"categories":[2]}
	]`
	routes := map[string]string{
		"/categories": `[{"id":1,"name":"Tech","slug":"tech"},{"id":2,"name":"Life","slug":"life"}]`,
		"/media/100":  `{"id":100,"source_url":"https://cdn.example/100.jpg"}`,
		"/menu":       `[{"ID":1,"title":"About","url":"/page/about","menu_item_parent":"0"}]`,
		"/logo":       `null`,
		"/posts/1":    `{"id":1,"title":{"rendered":"Fixture Post One"},"content":{"rendered":"<p>Fixture body text.</p>"},"featured_media":100}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		body, ok := routes[r.URL.Path]
		if r.URL.Path == "/posts" {
			ok = true
			switch {
			case q.Get("search") != "":
				body = `[{"id":2,"slug":"garden-notes","title":{"rendered":"Garden Notes"}}]`
			case q.Get("categories") == "1":
				body = `[{"id":1,"title":{"rendered":"Fixture Post One"},"featured_media":100}]`
			case q.Get("categories") == "2":
				body = `[{"id":2,"title":{"rendered":"Garden Notes"},"featured_media":0}]`
			default:
				body = latest
			}
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

