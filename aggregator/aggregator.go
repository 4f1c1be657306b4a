// Package aggregator combines source adapter calls into composite results.
//
// Every aggregation is all-or-nothing: the first member failure fails the whole
// request and no partial value is ever delivered. Nothing here retries.
package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/samber/lo"
)

var (
	ErrNoSources     = errors.New("no sources configured")
	ErrUnknownSource = errors.New("unknown source")
)

// Aggregator queries a fixed, ordered set of sources. The first one is primary
// and backs the landing screen.
type Aggregator struct {
	sources []source.Source
}

func New(sources ...source.Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// Sources returns the configured sources in order.
func (a *Aggregator) Sources() []source.Source {
	return a.sources
}

// Featured fetches the primary source's featured and latest listings in parallel.
func (a *Aggregator) Featured(ctx context.Context) *Request[source.FeaturedContainer] {
	return newRequest[source.FeaturedContainer]("featured").start(func() *promise.Promise[source.FeaturedContainer] {
		if len(a.sources) == 0 {
			return promise.Reject[source.FeaturedContainer](ErrNoSources)
		}

		return FeaturedOf(ctx, a.sources[0])
	})
}

// FeaturedOf issues exactly two calls against src and assembles the container
// from their results: index 0 is featured, index 1 is latest.
func FeaturedOf(ctx context.Context, src source.Source) *promise.Promise[source.FeaturedContainer] {
	lists := promise.Queue([]*promise.Promise[[]source.AnimeLink]{
		src.Featured(ctx),
		src.Latest(ctx),
	})

	return promise.Then(lists, func(lists [][]source.AnimeLink) (source.FeaturedContainer, error) {
		return source.FeaturedContainer{
			Featured: lists[0],
			Latest:   lists[1],
		}, nil
	})
}

// Search queries every source and concatenates the results in source order.
func (a *Aggregator) Search(ctx context.Context, query string) *Request[[]source.AnimeLink] {
	return newRequest[[]source.AnimeLink]("search").start(func() *promise.Promise[[]source.AnimeLink] {
		if len(a.sources) == 0 {
			return promise.Reject[[]source.AnimeLink](ErrNoSources)
		}

		calls := lo.Map(a.sources, func(src source.Source, _ int) *promise.Promise[[]source.AnimeLink] {
			return src.Search(ctx, query)
		})

		return promise.Then(promise.Queue(calls), func(lists [][]source.AnimeLink) ([]source.AnimeLink, error) {
			return lo.Flatten(lists), nil
		})
	})
}

// Episodes resolves the episodes of anime through the source that produced it.
func (a *Aggregator) Episodes(ctx context.Context, anime source.AnimeLink) *Request[[]source.EpisodeLink] {
	return newRequest[[]source.EpisodeLink]("episodes").start(func() *promise.Promise[[]source.EpisodeLink] {
		if anime.IsZero() {
			return promise.Reject[[]source.EpisodeLink](source.ErrNoAnime)
		}

		src, ok := a.Source(anime.SourceID())
		if !ok {
			return promise.Reject[[]source.EpisodeLink](fmt.Errorf("%w: %s", ErrUnknownSource, anime.SourceID()))
		}

		return src.Episodes(ctx, anime)
	})
}

// Source looks up a configured source by ID.
func (a *Aggregator) Source(id string) (source.Source, bool) {
	return lo.Find(a.sources, func(src source.Source) bool {
		return src.ID() == id
	})
}
