package custom

import (
	"context"
	"fmt"
	"sync"

	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	lua "github.com/yuin/gopher-lua"
)

// Source adapts a loaded Lua script. An LState is not safe for concurrent use,
// so calls are serialized; each still runs off the caller's goroutine.
type Source struct {
	name string

	mu    sync.Mutex
	state *lua.LState
}

func newSource(name string, state *lua.LState) *Source {
	return &Source{name: name, state: state}
}

func (s *Source) Name() string { return s.name }

func (s *Source) ID() string { return IDfromName(s.name) }

// Close releases the Lua state.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

func (s *Source) Featured(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return s.animes(ctx, constant.FeaturedAnimesFn)
}

func (s *Source) Latest(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return s.animes(ctx, constant.LatestAnimesFn)
}

func (s *Source) Search(ctx context.Context, query string) *promise.Promise[[]source.AnimeLink] {
	return s.animes(ctx, constant.SearchAnimesFn, lua.LString(query))
}

func (s *Source) Episodes(ctx context.Context, anime source.AnimeLink) *promise.Promise[[]source.EpisodeLink] {
	return promise.Go(ctx, func(ctx context.Context) ([]source.EpisodeLink, error) {
		if anime.IsZero() {
			return nil, source.ErrNoAnime
		}

		var episodes []source.EpisodeLink
		err := s.call(ctx, constant.AnimeEpisodesFn, func(table *lua.LTable) (err error) {
			episodes, err = mapRecords(table, func(record *lua.LTable) (source.EpisodeLink, error) {
				return episodeFromTable(record, anime)
			})
			return err
		}, lua.LString(anime.URL()))

		return episodes, err
	})
}

func (s *Source) animes(ctx context.Context, fn string, args ...lua.LValue) *promise.Promise[[]source.AnimeLink] {
	return promise.Go(ctx, func(ctx context.Context) ([]source.AnimeLink, error) {
		var animes []source.AnimeLink
		err := s.call(ctx, fn, func(table *lua.LTable) (err error) {
			animes, err = mapRecords(table, func(record *lua.LTable) (source.AnimeLink, error) {
				return animeFromTable(record, s.ID())
			})
			return err
		}, args...)

		return animes, err
	})
}

// call runs a global function expected to return a table and hands the table to
// convert while the state is still locked.
func (s *Source) call(ctx context.Context, fn string, convert func(*lua.LTable) error, args ...lua.LValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	luaFn := s.state.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return fmt.Errorf("function %s is not defined", fn)
	}

	log.WithFields(log.Fields{"source": s.name, "function": fn}).Debug("custom: calling")

	err := s.state.CallByParam(lua.P{
		Fn:      luaFn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", s.name, fn, err)
	}

	retval := s.state.Get(-1)
	s.state.Pop(1)

	table, ok := retval.(*lua.LTable)
	if !ok {
		return fmt.Errorf("%s: %s returned %s, expected %s", s.name, fn, retval.Type(), lua.LTTable)
	}

	return convert(table)
}
