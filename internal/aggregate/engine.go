// Package aggregate builds the home page's category sections.
//
// A refresh cycle runs three phases: select the first categories, fetch
// their posts with bounded concurrency, then resolve featured media for the
// posts that will actually be displayed. Completed cycles are committed to
// the session cache and reused while fresh.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/pressroom/internal/cache"
	"github.com/abelbrown/pressroom/internal/logging"
	"github.com/abelbrown/pressroom/internal/media"
	"github.com/abelbrown/pressroom/internal/otel"
	"github.com/abelbrown/pressroom/internal/wp"
)

var (
	// ErrCycleFailed is returned when the categories phase fails. The cause
	// is wrapped alongside it.
	ErrCycleFailed = errors.New("aggregation cycle failed")

	// ErrSuperseded is returned when a newer cycle committed first. The
	// returned plan is still complete but should not replace newer state.
	ErrSuperseded = errors.New("aggregation cycle superseded")
)

const (
	DefaultMaxCategories = 4
	DefaultConcurrency   = 3
	DefaultRecentPosts   = 4
)

// Source is the subset of the content client the engine reads from.
type Source interface {
	Categories(ctx context.Context) ([]wp.Category, error)
	PostsByCategory(ctx context.Context, categoryID int) ([]wp.Post, error)
	Posts(ctx context.Context) ([]wp.Post, error)
	PostByID(ctx context.Context, id int) (wp.Post, error)
}

// Config holds the engine's tunables. Zero values select defaults.
type Config struct {
	MaxCategories int
	Concurrency   int
	DisplayCounts map[int]int // category id -> posts to show
	RecentPosts   int
}

// Engine runs aggregation cycles against a Source.
type Engine struct {
	src      Source
	store    *cache.Store
	resolver *media.Resolver
	logger   *otel.Logger
	cfg      Config

	gen atomic.Uint64
}

// NewEngine creates an Engine. The store and resolver are shared with the
// rest of the session.
func NewEngine(src Source, store *cache.Store, resolver *media.Resolver, cfg Config, logger *otel.Logger) *Engine {
	if cfg.MaxCategories <= 0 {
		cfg.MaxCategories = DefaultMaxCategories
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.RecentPosts <= 0 {
		cfg.RecentPosts = DefaultRecentPosts
	}
	return &Engine{
		src:      src,
		store:    store,
		resolver: resolver,
		logger:   logger,
		cfg:      cfg,
	}
}

// Fallback returns the media URL used when nothing better is known.
func (e *Engine) Fallback() string {
	return e.resolver.Fallback()
}

// Refresh runs one aggregation cycle. If the cache is fresh the cached plan
// is returned without network activity. progress, if non-nil, is called with
// the partial plan once posts are known and again after each media wave.
//
// Errors: ErrCycleFailed when categories cannot be fetched, wp.ErrCancelled
// when ctx ends first (nothing is committed), ErrSuperseded when a newer
// cycle already committed.
func (e *Engine) Refresh(ctx context.Context, progress func(Plan)) (Plan, error) {
	gen := e.gen.Add(1)
	start := time.Now()

	if snap, ok := e.store.Fresh(); ok {
		plan := e.planFromSnapshot(snap)
		e.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCycleCached, Comp: "aggregate", Cycle: gen})
		return plan, nil
	}
	e.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCycleStart, Comp: "aggregate", Cycle: gen})

	// Phase 1: categories.
	cats, err := e.src.Categories(ctx)
	if err != nil {
		return Plan{}, e.abort(ctx, gen, err, start)
	}
	if len(cats) > e.cfg.MaxCategories {
		cats = cats[:e.cfg.MaxCategories]
	}
	if ctx.Err() != nil {
		return Plan{}, e.abort(ctx, gen, ctx.Err(), start)
	}

	// Phase 2: posts per category.
	posts := e.fetchPosts(ctx, gen, cats)
	if ctx.Err() != nil {
		return Plan{}, e.abort(ctx, gen, ctx.Err(), start)
	}

	sections, ids := buildSections(cats, posts, e.cfg.DisplayCounts)
	plan := Plan{
		Sections: sections,
		Media:    make(map[int]string, len(ids)),
		Fallback: e.resolver.Fallback(),
	}
	if progress != nil {
		progress(plan.clone())
	}

	// Phase 3: media for displayed posts.
	resolved, err := e.resolver.Resolve(ctx, ids, func(wave map[int]string) {
		for id, url := range wave {
			plan.Media[id] = url
		}
		if progress != nil {
			progress(plan.clone())
		}
	})
	if err != nil || ctx.Err() != nil {
		return Plan{}, e.abort(ctx, gen, errors.Join(err, ctx.Err()), start)
	}
	plan.Media = resolved

	if !e.store.Commit(gen, cache.Snapshot{Categories: cats, Posts: posts, Media: resolved}) {
		e.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCycleStale, Comp: "aggregate", Cycle: gen})
		return plan, ErrSuperseded
	}
	plan.FetchedAt = e.store.Now()

	e.logger.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindCycleComplete,
		Comp:  "aggregate",
		Cycle: gen,
		Count: len(sections),
		Dur:   time.Since(start),
		Extra: map[string]any{"media": len(resolved)},
	})
	return plan, nil
}

// Invalidate forces the next Refresh to go to the network.
func (e *Engine) Invalidate() {
	e.store.Invalidate()
}

// fetchPosts fetches posts for each category with at most Concurrency
// requests in flight. A failed category yields no posts.
func (e *Engine) fetchPosts(ctx context.Context, gen uint64, cats []wp.Category) map[int][]wp.Post {
	results := make([][]wp.Post, len(cats))

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, cat := range cats {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			posts, err := e.src.PostsByCategory(ctx, cat.ID)
			if err != nil {
				if !wp.IsCancelled(err) {
					logging.Warn("category posts unavailable", "category", cat.ID, "err", err)
					e.logger.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFetchError, Comp: "aggregate", Cycle: gen, ID: cat.ID, Err: err.Error()})
				}
				return nil // degraded to an empty list
			}
			results[i] = posts
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[int][]wp.Post, len(cats))
	for i, cat := range cats {
		out[cat.ID] = results[i]
	}
	return out
}

// abort classifies a cycle-ending error and reports it.
func (e *Engine) abort(ctx context.Context, gen uint64, err error, start time.Time) error {
	if ctx.Err() != nil || wp.IsCancelled(err) {
		e.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindCycleCancel, Comp: "aggregate", Cycle: gen, Dur: time.Since(start)})
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return &wp.CancelledError{Op: "refresh", Err: cause}
	}
	logging.Error("aggregation cycle failed", "cycle", gen, "err", err)
	e.logger.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindCycleFailed, Comp: "aggregate", Cycle: gen, Err: err.Error(), Dur: time.Since(start)})
	return fmt.Errorf("%w: %w", ErrCycleFailed, err)
}

func (e *Engine) planFromSnapshot(snap cache.Snapshot) Plan {
	sections, _ := buildSections(snap.Categories, snap.Posts, e.cfg.DisplayCounts)
	media := snap.Media
	if media == nil {
		media = map[int]string{}
	}
	return Plan{
		Sections:  sections,
		Media:     media,
		FetchedAt: snap.Timestamp,
		Fallback:  e.resolver.Fallback(),
	}
}
