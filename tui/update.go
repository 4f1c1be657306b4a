package tui

import (
	"strings"

	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/query"
	"github.com/anisan-cli/anifeed/source"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		cmd := b.deferred
		b.deferred = nil
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			b.fetch.Cancel()
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			return b.back()
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg)
	case featuredState:
		return b.updateFeatured(msg)
	case searchState:
		return b.updateSearch(msg)
	case animesState:
		return b.updateAnimes(msg)
	case episodesState:
		return b.updateEpisodes(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

// back cancels the pending fetch, if any, and returns to the previous screen.
// Leaving the first screen quits.
func (b *statefulBubble) back() (tea.Model, tea.Cmd) {
	b.fetch.Cancel()
	b.stopLoading()

	switch b.state {
	case searchState:
		b.inputC.SetValue("")
		b.searchSuggestion = mo.None[string]()
	case episodesState:
		b.episodesC.ResetSelected()
	}

	if !b.previousState() {
		return b, tea.Quit
	}

	return b, nil
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && b.loading {
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	}

	return b, nil
}

func (b *statefulBubble) updateFeatured(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.fetch.Cancel()
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.search):
			b.newState(searchState)
			return b, b.inputC.Focus()
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if anime, ok := selectedAnime(&b.featuredC); ok {
				return b, b.loadEpisodes(anime)
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.featuredC, cmd = b.featuredC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			q := strings.TrimSpace(b.inputC.Value())
			if q == "" {
				return b, nil
			}

			if err := query.Remember(q, 1); err != nil {
				log.Warn(err)
			}

			return b, b.searchAnime(q)
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion):
			if suggestion, ok := b.searchSuggestion.Get(); ok {
				b.inputC.SetValue(suggestion)
				b.inputC.CursorEnd()
				b.searchSuggestion = mo.None[string]()
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)

	if viper.GetBool(key.SearchShowQuerySuggestions) && b.inputC.Value() != "" {
		b.searchSuggestion = query.Suggest(b.inputC.Value())
	} else {
		b.searchSuggestion = mo.None[string]()
	}

	return b, cmd
}

func (b *statefulBubble) updateAnimes(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.confirm) {
		if anime, ok := selectedAnime(&b.animesC); ok {
			return b, b.loadEpisodes(anime)
		}
		return b, nil
	}

	var cmd tea.Cmd
	b.animesC, cmd = b.animesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateEpisodes(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.confirm) {
		if item, ok := b.episodesC.SelectedItem().(*listItem); ok {
			if episode, ok := item.internal.(source.EpisodeLink); ok {
				return b, b.episodesC.NewStatusMessage(episode.URL())
			}
		}
		return b, nil
	}

	var cmd tea.Cmd
	b.episodesC, cmd = b.episodesC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.quit) {
		return b, tea.Quit
	}

	return b, nil
}

func selectedAnime(l *list.Model) (source.AnimeLink, bool) {
	item, ok := l.SelectedItem().(*listItem)
	if !ok {
		return source.AnimeLink{}, false
	}

	anime, ok := item.internal.(source.AnimeLink)
	return anime, ok
}
