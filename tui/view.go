package tui

import (
	"fmt"
	"strings"

	"github.com/anisan-cli/anifeed/icon"
	"github.com/anisan-cli/anifeed/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	switch b.state {
	case loadingState:
		return b.viewLoading()
	case featuredState:
		return listExtraPaddingStyle.Render(b.featuredC.View())
	case searchState:
		return b.viewSearch()
	case animesState:
		return listExtraPaddingStyle.Render(b.animesC.View())
	case episodesState:
		return listExtraPaddingStyle.Render(b.episodesC.View())
	case errorState:
		return b.viewError()
	default:
		return "Unknown state"
	}
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(true, []string{
		style.Title("Loading"),
		"",
		b.spinnerC.View() + " " + b.progressStatus,
	})
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search Anime"),
		"",
		b.inputC.View(),
	}

	if suggestion, ok := b.searchSuggestion.Get(); ok && suggestion != b.inputC.Value() {
		lines = append(lines, "", style.Faint(fmt.Sprintf("%s %s", icon.Get(icon.Search), suggestion)))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewError() string {
	var msg string
	if b.lastError != nil {
		msg = b.lastError.Error()
	}

	return b.renderLines(true, []string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " The request failed:",
		"",
		style.Failure(wrap.String(msg, b.width)),
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
