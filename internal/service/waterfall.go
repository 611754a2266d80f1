package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gmedash/internal/cache"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ErrUnavailable means every tier of a waterfall came up empty.
var ErrUnavailable = errors.New("no provider returned data")

const (
	SourceCache   = "cache"
	SourceArchive = "archive"
	SourceNone    = "none"
)

// Result is a resolved dataset with its provenance.
type Result[T any] struct {
	Data T
	// Source is the producing provider on a live fetch, SourceCache for
	// cache hits, SourceArchive or SourceNone otherwise.
	Source string
	// OriginalSource is the provider that produced a cached value.
	OriginalSource string
	Stale          bool
	CacheAge       time.Duration
	Placeholder    bool
}

// Attempt is one provider call of a waterfall.
type Attempt[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// Tiers are the shared cache layers every waterfall consults. Mirror and
// the clock are optional.
type Tiers struct {
	Store  *cache.Store
	Mirror *cache.Mirror
	Now    func() time.Time
	tracer trace.Tracer
	group  singleflight.Group
}

func NewTiers(tracer trace.Tracer, store *cache.Store, mirror *cache.Mirror) *Tiers {
	return &Tiers{Store: store, Mirror: mirror, Now: time.Now, tracer: tracer}
}

func (t *Tiers) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

type cachedEntry[T any] struct {
	Data   T      `json:"data"`
	Source string `json:"source"`
}

// Waterfall resolves one dataset: fresh cache, provider attempts in order,
// stale memory, the Redis mirror, an optional archive and finally an
// optional placeholder. The first attempt whose value passes Validate wins
// and later attempts are not called.
type Waterfall[T any] struct {
	Key      string
	TTL      func(now time.Time) time.Duration
	Attempts []Attempt[T]
	Validate func(T) error
	// OnFresh runs after a live fetch was accepted and cached.
	OnFresh     func(ctx context.Context, v T)
	Archive     func(ctx context.Context) (T, error)
	Placeholder func() T
}

func (w Waterfall[T]) Run(ctx context.Context, tiers *Tiers) (Result[T], error) {
	ctx, span := tiers.tracer.Start(ctx, "waterfall.run")
	defer span.End()
	span.SetAttributes(attribute.String("key", w.Key))

	if lookup, ok := tiers.Store.Get(w.Key); ok && !lookup.Stale {
		if entry, ok := lookup.Data.(cachedEntry[T]); ok {
			span.SetAttributes(attribute.String("tier", "fresh"))
			return Result[T]{Data: entry.Data, Source: SourceCache, OriginalSource: entry.Source, CacheAge: lookup.Age}, nil
		}
	}

	// The flight is shared by every caller of the key, so it must outlive the
	// request that started it. The HTTP client timeout still bounds it.
	v, err, _ := tiers.group.Do(w.Key, func() (any, error) {
		return w.fetch(context.WithoutCancel(ctx), tiers)
	})
	if err == nil {
		span.SetAttributes(attribute.String("tier", "provider"))
		return v.(Result[T]), nil
	}

	if data, ok := tiers.Store.GetStale(w.Key); ok {
		if entry, ok := data.(cachedEntry[T]); ok {
			age, _ := tiers.Store.Age(w.Key)
			span.SetAttributes(attribute.String("tier", "stale"))
			return Result[T]{Data: entry.Data, Source: SourceCache, OriginalSource: entry.Source, Stale: true, CacheAge: age}, nil
		}
	}

	var mirrored cachedEntry[T]
	fetchedAt, ok, mirrorErr := tiers.Mirror.Load(ctx, w.Key, &mirrored)
	if mirrorErr != nil {
		log.Printf("stale mirror read error for %s: %v", w.Key, mirrorErr)
	}
	if ok && w.valid(mirrored.Data) {
		span.SetAttributes(attribute.String("tier", "mirror"))
		return Result[T]{Data: mirrored.Data, Source: SourceCache, OriginalSource: mirrored.Source, Stale: true, CacheAge: tiers.now().Sub(fetchedAt)}, nil
	}

	if w.Archive != nil {
		archived, archiveErr := w.Archive(ctx)
		if archiveErr == nil && w.valid(archived) {
			span.SetAttributes(attribute.String("tier", "archive"))
			return Result[T]{Data: archived, Source: SourceArchive, Stale: true}, nil
		}
		if archiveErr != nil {
			log.Printf("archive read error for %s: %v", w.Key, archiveErr)
		}
	}

	if w.Placeholder != nil {
		span.SetAttributes(attribute.String("tier", "placeholder"))
		return Result[T]{Data: w.Placeholder(), Source: SourceNone, Placeholder: true}, nil
	}

	span.SetAttributes(attribute.String("tier", "none"))
	return Result[T]{Source: SourceNone}, fmt.Errorf("%s: %w", w.Key, ErrUnavailable)
}

func (w Waterfall[T]) fetch(ctx context.Context, tiers *Tiers) (Result[T], error) {
	for _, a := range w.Attempts {
		v, err := a.Fetch(ctx)
		if err != nil {
			log.Printf("%s: %s attempt failed: %v", w.Key, a.Name, err)
			continue
		}
		if w.Validate != nil {
			if err := w.Validate(v); err != nil {
				log.Printf("%s: %s returned invalid data: %v", w.Key, a.Name, err)
				continue
			}
		}

		now := tiers.now()
		entry := cachedEntry[T]{Data: v, Source: a.Name}
		ttl := time.Minute
		if w.TTL != nil {
			ttl = w.TTL(now)
		}
		tiers.Store.Set(w.Key, entry, ttl)
		if err := tiers.Mirror.Save(ctx, w.Key, entry, now); err != nil {
			log.Printf("stale mirror write error for %s: %v", w.Key, err)
		}
		if w.OnFresh != nil {
			w.OnFresh(ctx, v)
		}
		return Result[T]{Data: v, Source: a.Name}, nil
	}
	return Result[T]{}, ErrUnavailable
}

func (w Waterfall[T]) valid(v T) bool {
	return w.Validate == nil || w.Validate(v) == nil
}

// fixedTTL is a TTL function independent of the clock.
func fixedTTL(d time.Duration) func(time.Time) time.Duration {
	return func(time.Time) time.Duration { return d }
}
