package inline

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"

	"github.com/anisan-cli/anifeed/source"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

type Episode struct {
	Episode string `json:"episode" jsonschema:"description=Episode identifier as reported by the source."`
	Server  string `json:"server" jsonschema:"description=Server the episode is hosted on."`
	URL     string `json:"url" jsonschema:"description=Absolute URL of the episode page."`
}

type Anime struct {
	Title    string    `json:"title" jsonschema:"description=Display title."`
	URL      string    `json:"url" jsonschema:"description=Canonical absolute URL of the anime."`
	Cover    string    `json:"cover,omitempty" jsonschema:"description=Absolute URL of the cover image if the source provides one."`
	Source   string    `json:"source" jsonschema:"description=ID of the source that produced this anime."`
	Episodes []Episode `json:"episodes,omitempty" jsonschema:"description=Episodes of the picked anime. Present only when an anime picker was given."`
}

type Output struct {
	Mode     Mode    `json:"mode" jsonschema:"enum=featured,enum=latest,enum=search"`
	Query    string  `json:"query,omitempty"`
	Featured []Anime `json:"featured,omitempty" jsonschema:"description=Featured listing of the primary source."`
	Latest   []Anime `json:"latest,omitempty" jsonschema:"description=Latest listing of the primary source."`
	Result   []Anime `json:"result" jsonschema:"description=Search results or the picked anime."`
}

func toAnime(a source.AnimeLink) Anime {
	return Anime{
		Title:  a.Title(),
		URL:    a.URL(),
		Cover:  a.Cover(),
		Source: a.SourceID(),
	}
}

func toAnimes(animes []source.AnimeLink) []Anime {
	return lo.Map(animes, func(a source.AnimeLink, _ int) Anime { return toAnime(a) })
}

func toEpisodes(episodes []source.EpisodeLink) []Episode {
	return lo.Map(episodes, func(e source.EpisodeLink, _ int) Episode {
		return Episode{Episode: e.Episode(), Server: e.Server(), URL: e.URL()}
	})
}

func writeJSON(out io.Writer, output *Output) error {
	if output.Result == nil {
		output.Result = []Anime{}
	}

	return json.NewEncoder(out).Encode(output)
}

// Schema describes Output.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		switch name := t.Name(); strings.ToLower(name) {
		case "anime", "episode", "output":
			return "inline." + name
		default:
			return name
		}
	}

	return reflector.Reflect(&Output{})
}
