// Package inline is the non-interactive, scriptable mode.
package inline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/task"
	"github.com/samber/mo"
)

// Run performs one aggregation and writes it to options.Out.
// Every step is delivered on the calling goroutine through a promise.Loop,
// so output is written from one place, in order.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	r := &runner{
		ctx:     ctx,
		options: options,
		output:  &Output{Mode: options.Mode, Query: options.Query},
		loop:    promise.NewLoop(),
	}
	defer r.step.Cancel()

	switch options.Mode {
	case ModeFeatured, ModeLatest:
		observe(r, func(ctx context.Context) *promise.Promise[source.FeaturedContainer] {
			return options.Aggregator.Featured(ctx).Promise
		}, r.featured)
	case ModeSearch:
		if options.Query == "" {
			return fmt.Errorf("search mode requires a query")
		}

		observe(r, func(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
			return options.Aggregator.Search(ctx, options.Query).Promise
		}, r.listed)
	default:
		return fmt.Errorf("unknown mode: %q", options.Mode)
	}

	r.loop.Run(ctx)

	if !r.done {
		return ctx.Err()
	}

	return r.err
}

type runner struct {
	ctx     context.Context
	options *Options
	output  *Output
	loop    *promise.Loop
	step    task.Slot

	// written only on the loop
	done bool
	err  error
}

// observe makes the promise built by start the current step. onSuccess runs on the loop.
func observe[T any](r *runner, start func(ctx context.Context) *promise.Promise[T], onSuccess func(T)) {
	r.step.Start(r.ctx, func(ctx context.Context) *task.Handle {
		return start(ctx).Observe(r.loop, func(res mo.Result[T]) {
			value, err := res.Get()
			if err != nil {
				r.finish(err)
				return
			}

			onSuccess(value)
		})
	})
}

func (r *runner) finish(err error) {
	r.done, r.err = true, err
	r.loop.Close()
}

func (r *runner) featured(container source.FeaturedContainer) {
	listing := container.Latest
	if r.options.Mode == ModeFeatured {
		r.output.Featured = toAnimes(container.Featured)
		listing = container.Featured
	}
	r.output.Latest = toAnimes(container.Latest)

	r.listed(listing)
}

func (r *runner) listed(listing []source.AnimeLink) {
	log.WithFields(log.Fields{"mode": r.options.Mode, "found": len(listing)}).Info("inline listing resolved")

	if r.options.AnimePicker.IsAbsent() {
		r.output.Result = toAnimes(listing)
		if r.options.JSON {
			r.finish(writeJSON(r.options.Out, r.output))
			return
		}
		r.finish(writeAnimes(r.options.Out, listing))
		return
	}

	picked, ok := r.options.AnimePicker.MustGet()(listing).Get()
	if !ok {
		var err error
		if r.options.JSON {
			err = writeJSON(r.options.Out, r.output)
		}
		r.finish(err)
		return
	}

	observe(r, func(ctx context.Context) *promise.Promise[[]source.EpisodeLink] {
		return r.options.Aggregator.Episodes(ctx, picked).Promise
	}, func(episodes []source.EpisodeLink) {
		r.episodes(picked, episodes)
	})
}

func (r *runner) episodes(picked source.AnimeLink, episodes []source.EpisodeLink) {
	if filter, ok := r.options.EpisodesFilter.Get(); ok {
		episodes = filter(episodes)
	}

	if r.options.JSON {
		anime := toAnime(picked)
		anime.Episodes = toEpisodes(episodes)
		r.output.Result = []Anime{anime}
		r.finish(writeJSON(r.options.Out, r.output))
		return
	}

	r.finish(writeEpisodes(r.options.Out, episodes))
}

func writeAnimes(out io.Writer, animes []source.AnimeLink) error {
	for _, a := range animes {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", a.Title(), a.URL()); err != nil {
			return err
		}
	}
	return nil
}

func writeEpisodes(out io.Writer, episodes []source.EpisodeLink) error {
	for _, e := range episodes {
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", e.Episode(), e.Server(), e.URL()); err != nil {
			return err
		}
	}
	return nil
}
