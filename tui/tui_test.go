package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/source/sourcetest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

// queue collects deliveries so the test can play the Bubble Tea loop.
type queue chan func()

func (q queue) Execute(fn func()) { q <- fn }

func (q queue) next(timeout time.Duration) (func(), bool) {
	select {
	case fn := <-q:
		return fn, true
	case <-time.After(timeout):
		return nil, false
	}
}

var _ promise.Executor = queue(nil)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestBubble(t *testing.T) {
	Convey("Given a bubble over one source", t, func() {
		filesystem.SetMemMapFs()

		src := sourcetest.New("fake")
		src.FeaturedList = sourcetest.Animes("fake", "featured", 3)
		src.LatestList = sourcetest.Animes("fake", "latest", 5)
		src.SearchResults["bebop"] = sourcetest.Animes("fake", "bebop", 2)
		anime := src.FeaturedList[0]
		src.EpisodeLists[anime.URL()] = []source.EpisodeLink{lo.Must(source.NewEpisodeLink(anime, "main", "1", ""))}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		deliveries := make(queue, 8)
		b := newBubble(ctx, aggregator.New(src))
		b.exec = deliveries
		b.resize(100, 40)

		deliver := func() {
			fn, ok := deliveries.next(2 * time.Second)
			So(ok, ShouldBeTrue)
			b.Update(runMsg(fn))
		}

		Convey("The landing screen should list both sections", func() {
			b.Init()
			So(b.state, ShouldEqual, loadingState)
			deliver()
			So(b.state, ShouldEqual, featuredState)
			So(b.featuredC.Items(), ShouldHaveLength, 3+5+2)

			Convey("Enter should open the episodes of the selected anime", func() {
				b.Update(enter)
				So(b.state, ShouldEqual, loadingState)
				deliver()
				So(b.state, ShouldEqual, episodesState)
				So(b.episodesC.Items(), ShouldHaveLength, 1)
				So(b.selectedAnime.URL(), ShouldEqual, anime.URL())

				Convey("Esc should return to the landing screen", func() {
					b.Update(esc)
					So(b.state, ShouldEqual, featuredState)
				})
			})

			Convey("A search should show the results", func() {
				b.Update(runes("s"))
				So(b.state, ShouldEqual, searchState)
				b.Update(runes("bebop"))
				b.Update(enter)
				deliver()
				So(b.state, ShouldEqual, animesState)
				So(b.animesC.Items(), ShouldHaveLength, 2)
			})

			Convey("Esc during a fetch should cancel it and suppress its delivery", func() {
				src.Delay["search"] = 100 * time.Millisecond
				b.Update(runes("s"))
				b.Update(runes("bebop"))
				b.Update(enter)
				So(b.state, ShouldEqual, loadingState)

				b.Update(esc)
				So(b.state, ShouldEqual, searchState)
				So(b.fetch.Current(), ShouldBeNil)

				if fn, ok := deliveries.next(300 * time.Millisecond); ok {
					b.Update(runMsg(fn))
				}
				So(b.state, ShouldEqual, searchState)
			})

			Convey("A new fetch should supersede the pending one", func() {
				src.Delay["episodes"] = 50 * time.Millisecond
				b.Update(enter)
				first := b.fetch.Current()

				b.loadEpisodes(anime)
				So(first.State().String(), ShouldEqual, "cancelled")
				So(b.fetch.Current(), ShouldNotEqual, first)

				deliver()
				So(b.state, ShouldEqual, episodesState)

				_, again := deliveries.next(150 * time.Millisecond)
				So(again, ShouldBeFalse)
			})
		})

		Convey("A failing source should land on the error screen", func() {
			src.Err["featured"] = errors.New("upstream down")
			b.Init()
			deliver()
			So(b.state, ShouldEqual, errorState)
			So(b.lastError, ShouldNotBeNil)
			So(b.View(), ShouldContainSubstring, "upstream down")
		})

		Convey("Esc on the first load should quit", func() {
			src.Delay["featured"] = 100 * time.Millisecond
			b.Init()
			_, cmd := b.Update(esc)
			So(cmd, ShouldNotBeNil)
			So(b.fetch.Current(), ShouldBeNil)
		})
	})
}
