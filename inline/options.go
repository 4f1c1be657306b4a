package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Mode selects what inline mode prints.
type Mode string

const (
	ModeFeatured Mode = "featured"
	ModeLatest   Mode = "latest"
	ModeSearch   Mode = "search"
)

// AvailableModes lists the accepted values of the --mode flag.
func AvailableModes() []string {
	return []string{string(ModeFeatured), string(ModeLatest), string(ModeSearch)}
}

type (
	AnimePicker    func([]source.AnimeLink) mo.Option[source.AnimeLink]
	EpisodesFilter func([]source.EpisodeLink) []source.EpisodeLink
)

type Options struct {
	Out        io.Writer
	Aggregator *aggregator.Aggregator
	Mode       Mode
	Query      string
	JSON       bool

	// AnimePicker narrows the listing down to one anime whose episodes are then fetched.
	AnimePicker    mo.Option[AnimePicker]
	EpisodesFilter mo.Option[EpisodesFilter]
}

// ParseAnimePicker understands first, last, exact and index. value is the
// exact title or the index.
func ParseAnimePicker(kind, value string) (AnimePicker, error) {
	switch kind {
	case "first":
		return func(animes []source.AnimeLink) mo.Option[source.AnimeLink] {
			return lo.Ternary(len(animes) == 0, mo.None[source.AnimeLink](), mo.Some(lo.FirstOrEmpty(animes)))
		}, nil
	case "last":
		return func(animes []source.AnimeLink) mo.Option[source.AnimeLink] {
			return lo.Ternary(len(animes) == 0, mo.None[source.AnimeLink](), mo.Some(lo.LastOrEmpty(animes)))
		}, nil
	case "exact":
		return func(animes []source.AnimeLink) mo.Option[source.AnimeLink] {
			return mo.TupleToOption(lo.Find(animes, func(a source.AnimeLink) bool {
				return a.Title() == value
			}))
		}, nil
	case "index":
		idx, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", value)
		}

		return func(animes []source.AnimeLink) mo.Option[source.AnimeLink] {
			if len(animes) == 0 {
				return mo.None[source.AnimeLink]()
			}
			return mo.Some(animes[util.Min(int(idx), len(animes)-1)])
		}, nil
	default:
		return nil, fmt.Errorf("unknown picker type: %s", kind)
	}
}

// ParseEpisodesFilter accepts first, last, all, a zero-based index,
// an inclusive range "from-to" and a substring wrapped in "@".
func ParseEpisodesFilter(description string) (EpisodesFilter, error) {
	switch description {
	case "first":
		return func(episodes []source.EpisodeLink) []source.EpisodeLink {
			return episodes[:util.Min(1, len(episodes))]
		}, nil
	case "last":
		return func(episodes []source.EpisodeLink) []source.EpisodeLink {
			return episodes[util.Max(0, len(episodes)-1):]
		}, nil
	case "all":
		return func(episodes []source.EpisodeLink) []source.EpisodeLink {
			return episodes
		}, nil
	}

	if len(description) >= 2 && strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") {
		sub := strings.ToLower(description[1 : len(description)-1])
		return func(episodes []source.EpisodeLink) []source.EpisodeLink {
			return lo.Filter(episodes, func(e source.EpisodeLink, _ int) bool {
				return strings.Contains(strings.ToLower(e.Episode()), sub)
			})
		}, nil
	}

	if from, to, ok := strings.Cut(description, "-"); ok {
		start, err1 := strconv.Atoi(from)
		end, err2 := strconv.Atoi(to)
		if err1 != nil || err2 != nil || start < 0 || end < start {
			return nil, fmt.Errorf("invalid episode range: %s", description)
		}

		return func(episodes []source.EpisodeLink) []source.EpisodeLink {
			return episodes[util.Min(start, len(episodes)):util.Min(end+1, len(episodes))]
		}, nil
	}

	if idx, err := strconv.Atoi(description); err == nil && idx >= 0 {
		return func(episodes []source.EpisodeLink) []source.EpisodeLink {
			if idx >= len(episodes) {
				return []source.EpisodeLink{}
			}
			return episodes[idx : idx+1]
		}, nil
	}

	return nil, fmt.Errorf("invalid episode filter: %s", description)
}
