package custom

import (
	"fmt"

	"github.com/anisan-cli/anifeed/source"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	switch val.Type() {
	case lua.LTString, lua.LTNumber:
		return val.String()
	default:
		return ""
	}
}

// mapRecords maps the array part of table in order. Any entry that is not a
// table or does not convert fails the whole list.
func mapRecords[T any](table *lua.LTable, convert func(*lua.LTable) (T, error)) ([]T, error) {
	n := table.Len()
	out := make([]T, 0, n)

	for i := 1; i <= n; i++ {
		record, ok := table.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("record %d: expected table, got %s", i, table.RawGetInt(i).Type())
		}

		v, err := convert(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		out = append(out, v)
	}

	return out, nil
}

// animeFromTable reads {title, url, cover}. "name" is accepted for title.
func animeFromTable(table *lua.LTable, sourceID string) (source.AnimeLink, error) {
	title := getString(table, "title")
	if title == "" {
		title = getString(table, "name")
	}

	if title == "" {
		return source.AnimeLink{}, fmt.Errorf("anime must have a title")
	}

	return source.NewAnimeLink(title, getString(table, "url"), getString(table, "cover"), sourceID)
}

// episodeFromTable reads {id, url, server}. "name" is accepted for id.
func episodeFromTable(table *lua.LTable, parent source.AnimeLink) (source.EpisodeLink, error) {
	id := getString(table, "id")
	if id == "" {
		id = getString(table, "name")
	}

	if id == "" {
		return source.EpisodeLink{}, fmt.Errorf("episode must have an id")
	}

	return source.NewEpisodeLink(parent, getString(table, "server"), id, getString(table, "url"))
}
