package tui

import (
	"fmt"

	"github.com/anisan-cli/anifeed/icon"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/style"
	"github.com/spf13/viper"
)

// section separates the featured and latest listings on the landing screen.
type section string

// listItem adapts links and section headers to list.Item.
type listItem struct {
	internal any
}

func (t *listItem) Title() string {
	switch e := t.internal.(type) {
	case section:
		return style.Bold(fmt.Sprintf("%s %s", icon.Get(icon.Source), string(e)))
	case source.AnimeLink:
		return e.Title()
	case source.EpisodeLink:
		return fmt.Sprintf("%s %s", icon.Get(icon.Episode), e.Episode())
	default:
		return t.FilterValue()
	}
}

func (t *listItem) Description() string {
	showURLs := viper.GetBool(key.TUIShowURLs)

	switch e := t.internal.(type) {
	case source.AnimeLink:
		if showURLs {
			return style.Faint(e.URL())
		}
		return style.Faint(e.SourceID())
	case source.EpisodeLink:
		if showURLs {
			return style.Faint(e.Server() + " " + e.URL())
		}
		return style.Faint(e.Server())
	default:
		return ""
	}
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case section:
		return string(e)
	case source.AnimeLink:
		return e.Title()
	case source.EpisodeLink:
		return e.Episode()
	default:
		return ""
	}
}
