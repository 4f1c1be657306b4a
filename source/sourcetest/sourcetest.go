// Package sourcetest provides an in-memory source.Source for tests.
package sourcetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
)

// Source answers from fixed lists after an optional delay.
type Source struct {
	IDValue       string
	FeaturedList  []source.AnimeLink
	LatestList    []source.AnimeLink
	SearchResults map[string][]source.AnimeLink
	EpisodeLists  map[string][]source.EpisodeLink

	// Err, when set, fails the named operation ("featured", "latest", "search", "episodes").
	Err map[string]error

	// Delay postpones the named operation.
	Delay map[string]time.Duration

	calls atomic.Int32
}

// New returns a source with id and no data.
func New(id string) *Source {
	return &Source{
		IDValue:       id,
		SearchResults: map[string][]source.AnimeLink{},
		EpisodeLists:  map[string][]source.EpisodeLink{},
		Err:           map[string]error{},
		Delay:         map[string]time.Duration{},
	}
}

// Animes builds n anime links named prefix-0 .. prefix-(n-1).
func Animes(sourceID, prefix string, n int) []source.AnimeLink {
	links := make([]source.AnimeLink, n)
	for i := range links {
		link, err := source.NewAnimeLink(
			fmt.Sprintf("%s-%d", prefix, i),
			fmt.Sprintf("https://%s.example.org/anime/%s-%d", sourceID, prefix, i),
			"",
			sourceID,
		)
		if err != nil {
			panic(err)
		}
		links[i] = link
	}
	return links
}

// Calls reports how many operations were started.
func (s *Source) Calls() int {
	return int(s.calls.Load())
}

func (s *Source) ID() string   { return s.IDValue }
func (s *Source) Name() string { return s.IDValue }

func (s *Source) Featured(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return run(ctx, s, "featured", s.FeaturedList)
}

func (s *Source) Latest(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return run(ctx, s, "latest", s.LatestList)
}

func (s *Source) Search(ctx context.Context, query string) *promise.Promise[[]source.AnimeLink] {
	return run(ctx, s, "search", s.SearchResults[query])
}

func (s *Source) Episodes(ctx context.Context, anime source.AnimeLink) *promise.Promise[[]source.EpisodeLink] {
	return run(ctx, s, "episodes", s.EpisodeLists[anime.URL()])
}

func run[T any](ctx context.Context, s *Source, op string, v T) *promise.Promise[T] {
	s.calls.Add(1)
	delay, err := s.Delay[op], s.Err[op]

	return promise.Go(ctx, func(ctx context.Context) (T, error) {
		var zero T
		if delay > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err != nil {
			return zero, err
		}

		return v, nil
	})
}
