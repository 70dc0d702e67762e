// Package media resolves featured-media ids to display URLs.
//
// Resolution goes through the session cache first. Uncached ids are fetched
// in fixed-size batches, a bounded number of batches at a time, and any
// per-id failure resolves to the fallback URL instead of failing the call.
package media

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/abelbrown/pressroom/internal/cache"
	"github.com/abelbrown/pressroom/internal/logging"
	"github.com/abelbrown/pressroom/internal/otel"
	"github.com/abelbrown/pressroom/internal/wp"
)

const (
	DefaultBatchSize   = 3
	DefaultConcurrency = 3
	DefaultFallbackURL = "/fallback-image.jpg"
)

// Fetcher loads one media record. *wp.Client satisfies it.
type Fetcher interface {
	Media(ctx context.Context, id int) (wp.Media, error)
}

// Resolver maps media ids to URLs.
type Resolver struct {
	fetcher     Fetcher
	store       *cache.Store
	logger      *otel.Logger
	batchSize   int
	concurrency int
	fallback    string

	group singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBatchSize sets the number of ids per batch.
func WithBatchSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithConcurrency sets how many batches run at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithFallback sets the URL used when a record cannot be resolved.
func WithFallback(url string) Option {
	return func(r *Resolver) {
		if url != "" {
			r.fallback = url
		}
	}
}

// WithLogger attaches an event logger.
func WithLogger(l *otel.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver backed by store.
func NewResolver(f Fetcher, store *cache.Store, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:     f,
		store:       store,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		fallback:    DefaultFallbackURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fallback returns the URL substituted for unresolvable media.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Resolve returns a URL for every positive id in ids. Cached ids are served
// without network activity. After each wave of batches, progress (if non-nil)
// receives the entries resolved by that wave.
//
// Every id is cached as soon as it resolves. If ctx ends, no further cache
// writes happen, in-flight results are dropped, and Resolve returns an error
// matching wp.ErrCancelled along with the entries of completed waves.
func (r *Resolver) Resolve(ctx context.Context, ids []int, progress func(map[int]string)) (map[int]string, error) {
	out := make(map[int]string, len(ids))
	var pending []int
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		if url, ok := r.store.Media(id); ok {
			out[id] = url
			continue
		}
		pending = append(pending, id)
	}
	if hits := len(out); hits > 0 {
		r.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMediaHit, Comp: "media", Count: hits})
	}
	if len(pending) == 0 {
		return out, nil
	}

	batches := chunk(pending, r.batchSize)
	for start := 0; start < len(batches); start += r.concurrency {
		if ctx.Err() != nil {
			return out, &wp.CancelledError{Op: "media", Err: ctx.Err()}
		}
		end := min(start+r.concurrency, len(batches))

		t0 := time.Now()
		wave, err := r.runWave(ctx, batches[start:end])
		if err != nil {
			return out, err
		}
		for id, url := range wave {
			out[id] = url
		}
		r.logger.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindMediaBatch,
			Comp:  "media",
			Count: len(wave),
			Dur:   time.Since(t0),
		})
		if progress != nil {
			progress(wave)
		}
	}
	return out, nil
}

// runWave fetches every member of every batch concurrently. Each id is
// written to the cache as soon as it resolves, unless ctx has ended.
func (r *Resolver) runWave(ctx context.Context, batches [][]int) (map[int]string, error) {
	var n int
	for _, b := range batches {
		n += len(b)
	}
	urls := make([]string, n)
	order := make([]int, 0, n)

	var outer errgroup.Group
	i := 0
	for _, batch := range batches {
		base := i
		order = append(order, batch...)
		i += len(batch)
		outer.Go(func() error {
			var inner errgroup.Group
			for j, id := range batch {
				inner.Go(func() error {
					url, err := r.resolveOne(ctx, id)
					urls[base+j] = url
					return err
				})
			}
			return inner.Wait()
		})
	}
	err := outer.Wait()

	if ctx.Err() != nil {
		return nil, &wp.CancelledError{Op: "media", Err: ctx.Err()}
	}
	if err != nil {
		return nil, err
	}

	wave := make(map[int]string, n)
	for k, id := range order {
		wave[id] = urls[k]
	}
	return wave, nil
}

// resolveOne returns the URL for id, collapsing concurrent requests for the
// same id into one fetch. It fails only when ctx ends.
func (r *Resolver) resolveOne(ctx context.Context, id int) (string, error) {
	key := strconv.Itoa(id)
	fetch := func() (any, error) { return r.fetchOne(ctx, id) }

	v, err, _ := r.group.Do(key, fetch)
	for err != nil && ctx.Err() == nil {
		// The shared call ran under another caller's context, which ended.
		v, err, _ = r.group.Do(key, fetch)
	}
	if err != nil {
		return "", err
	}
	url, _ := v.(string)
	return url, nil
}

// fetchOne resolves id against the cache, then the network. Failures and
// empty source URLs yield the fallback, which is cached like any URL.
func (r *Resolver) fetchOne(ctx context.Context, id int) (string, error) {
	if url, ok := r.store.Media(id); ok {
		return url, nil
	}

	m, err := r.fetcher.Media(ctx, id)
	if ctx.Err() != nil {
		return "", &wp.CancelledError{Op: "media", Err: ctx.Err()}
	}

	url := m.SourceURL
	switch {
	case err != nil:
		logging.Debug("media fallback", "id", id, "err", err)
		r.logger.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindMediaFallback, Comp: "media", ID: id, Err: err.Error()})
		url = r.fallback
	case url == "":
		r.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMediaFallback, Comp: "media", ID: id, Msg: "empty source_url"})
		url = r.fallback
	}
	r.store.PutMedia(id, url)
	return url, nil
}

func chunk(ids []int, size int) [][]int {
	var out [][]int
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
