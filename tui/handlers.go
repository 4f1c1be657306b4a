package tui

import (
	"context"

	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/task"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// observe replaces whatever the UI was waiting for with the promise built by start.
// onSuccess runs on the Bubble Tea loop, only if the fetch was not superseded.
func observe[T any](b *statefulBubble, status string, start func(ctx context.Context) *promise.Promise[T], onSuccess func(T) tea.Cmd) tea.Cmd {
	b.progressStatus = status
	b.newState(loadingState)

	b.fetch.Start(b.ctx, func(ctx context.Context) *task.Handle {
		return start(ctx).Observe(b.exec, func(r mo.Result[T]) {
			b.stopLoading()

			value, err := r.Get()
			if err != nil {
				b.raiseError(err)
				return
			}

			b.later(onSuccess(value))
		})
	})

	return b.startLoading()
}

func (b *statefulBubble) loadFeatured() tea.Cmd {
	return observe(b, "Fetching featured anime",
		func(ctx context.Context) *promise.Promise[source.FeaturedContainer] {
			return b.aggregator.Featured(ctx).Promise
		},
		func(container source.FeaturedContainer) tea.Cmd {
			items := make([]list.Item, 0, len(container.Featured)+len(container.Latest)+2)
			items = append(items, &listItem{internal: section("Featured")})
			items = append(items, animeItems(container.Featured)...)
			items = append(items, &listItem{internal: section("Latest")})
			items = append(items, animeItems(container.Latest)...)

			b.newState(featuredState)
			cmd := b.featuredC.SetItems(items)
			b.featuredC.Select(lo.Ternary(len(container.Featured) > 0, 1, 0))
			return cmd
		},
	)
}

func (b *statefulBubble) searchAnime(query string) tea.Cmd {
	return observe(b, "Searching "+query,
		func(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
			return b.aggregator.Search(ctx, query).Promise
		},
		func(animes []source.AnimeLink) tea.Cmd {
			b.newState(animesState)
			b.animesC.ResetSelected()
			return b.animesC.SetItems(animeItems(animes))
		},
	)
}

func (b *statefulBubble) loadEpisodes(anime source.AnimeLink) tea.Cmd {
	b.selectedAnime = anime

	return observe(b, "Fetching episodes of "+anime.Title(),
		func(ctx context.Context) *promise.Promise[[]source.EpisodeLink] {
			return b.aggregator.Episodes(ctx, anime).Promise
		},
		func(episodes []source.EpisodeLink) tea.Cmd {
			b.newState(episodesState)
			b.episodesC.Title = anime.Title()
			b.episodesC.ResetSelected()
			return b.episodesC.SetItems(lo.Map(episodes, func(e source.EpisodeLink, _ int) list.Item {
				return &listItem{internal: e}
			}))
		},
	)
}

func animeItems(animes []source.AnimeLink) []list.Item {
	return lo.Map(animes, func(a source.AnimeLink, _ int) list.Item {
		return &listItem{internal: a}
	})
}
