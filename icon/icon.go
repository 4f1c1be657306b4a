// Package icon renders status symbols in the variant chosen by the icons.variant key.
package icon

import (
	"github.com/anisan-cli/anifeed/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants lists the values accepted by icons.variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Progress
	Lua
	Source
	Search
	Episode
	Link
	Cancel
)

type glyphs struct {
	emoji, nerd, plain string
}

var icons = map[Icon]glyphs{
	Success:  {"✅", "", "+"},
	Fail:     {"❌", "", "x"},
	Progress: {"⏳", "", "..."},
	Lua:      {"🌙", "", "lua"},
	Source:   {"📦", "", "#"},
	Search:   {"🔎", "", "?"},
	Episode:  {"🎞", "", ">"},
	Link:     {"🔗", "", "@"},
	Cancel:   {"🚫", "", "-"},
}

func (g glyphs) variant(v string) string {
	switch v {
	case emoji:
		return g.emoji
	case nerd:
		return g.nerd
	default:
		return g.plain
	}
}

// Get renders i. Unknown variants fall back to plain.
func Get(i Icon) string {
	g, ok := icons[i]
	if !ok {
		return ""
	}

	return g.variant(viper.GetString(key.IconsVariant))
}
