// Package cache holds the session-wide content cache shared by every
// aggregation cycle: the selected categories, their posts, the media URLs
// rendered with them, and the time of the last full refresh.
//
// A Store is constructed once per application session and passed to the
// components that use it. It is safe for concurrent use.
package cache

import (
	"sync"
	"time"

	"github.com/abelbrown/pressroom/internal/wp"
)

// DefaultTTL is the freshness window of a committed snapshot.
const DefaultTTL = 5 * time.Minute

// Snapshot is the aggregated state of one completed cycle.
type Snapshot struct {
	Categories []wp.Category
	Posts      map[int][]wp.Post // category id -> posts as fetched
	Media      map[int]string    // media id -> URL for the displayed posts
	Timestamp  time.Time
}

// Store is the session cache.
type Store struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	snap      Snapshot
	populated bool
	committed uint64 // generation of the last accepted commit

	// media is keyed independently of the snapshot timestamp; entries are
	// only ever overwritten by a newer resolution of the same id.
	mediaMu sync.RWMutex
	media   map[int]string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store. ttl <= 0 selects DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		ttl:   ttl,
		now:   time.Now,
		media: make(map[int]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// TTL returns the freshness window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Fresh returns a copy of the committed snapshot and true when the store is
// populated and now - Timestamp < TTL.
func (s *Store) Fresh() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.populated || s.snap.Timestamp.IsZero() {
		return Snapshot{}, false
	}
	if s.now().Sub(s.snap.Timestamp) >= s.ttl {
		return Snapshot{}, false
	}
	return cloneSnapshot(s.snap), true
}

// Last returns the last committed snapshot regardless of freshness.
func (s *Store) Last() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.populated {
		return Snapshot{}, false
	}
	return cloneSnapshot(s.snap), true
}

// Commit replaces categories, posts and media together and stamps the
// snapshot with the current time. A commit from a generation older than
// the last accepted one is rejected and Commit returns false.
func (s *Store) Commit(gen uint64, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.committed {
		return false
	}
	snap = cloneSnapshot(snap)
	snap.Timestamp = s.now()
	s.snap = snap
	s.populated = true
	s.committed = gen
	return true
}

// Invalidate marks the snapshot stale so the next cycle refreshes. Media
// entries are kept.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Timestamp = time.Time{}
}

// Media returns the cached URL for a media id.
func (s *Store) Media(id int) (string, bool) {
	s.mediaMu.RLock()
	defer s.mediaMu.RUnlock()
	url, ok := s.media[id]
	return url, ok
}

// PutMedia records the URL resolved for a media id.
func (s *Store) PutMedia(id int, url string) {
	s.mediaMu.Lock()
	s.media[id] = url
	s.mediaMu.Unlock()
}

// MediaLen returns the number of cached media entries.
func (s *Store) MediaLen() int {
	s.mediaMu.RLock()
	defer s.mediaMu.RUnlock()
	return len(s.media)
}

func cloneSnapshot(in Snapshot) Snapshot {
	out := Snapshot{Timestamp: in.Timestamp}
	if in.Categories != nil {
		out.Categories = append([]wp.Category(nil), in.Categories...)
	}
	if in.Posts != nil {
		out.Posts = make(map[int][]wp.Post, len(in.Posts))
		for k, v := range in.Posts {
			out.Posts[k] = append([]wp.Post(nil), v...)
		}
	}
	if in.Media != nil {
		out.Media = make(map[int]string, len(in.Media))
		for k, v := range in.Media {
			out.Media[k] = v
		}
	}
	return out
}
