package tui

import (
	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm,
	search,
	acceptSearchSuggestion,
	back,
	up, down, left, right,
	top, bottom,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		search: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp(style.Fg(color.Featured)("s"), style.Fg(color.Featured)("search")),
		),
		acceptSearchSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept suggestion"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "right"),
		),
		top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() []key.Binding {
	switch k.state {
	case loadingState:
		return []key.Binding{k.back, k.forceQuit}
	case featuredState:
		return []key.Binding{withDescription(k.confirm, "episodes"), k.search, k.quit}
	case searchState:
		return []key.Binding{k.confirm, k.acceptSearchSuggestion, k.back, k.forceQuit}
	case animesState:
		return []key.Binding{withDescription(k.confirm, "episodes"), k.back}
	case episodesState:
		return []key.Binding{withDescription(k.confirm, "show url"), k.back}
	case errorState:
		return []key.Binding{k.back, k.quit}
	default:
		return nil
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	return k.help()
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.help()}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}

func withDescription(k key.Binding, description string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k.Keys()...),
		key.WithHelp(k.Help().Key, description),
	)
}
