package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/task"
	"github.com/anisan-cli/anifeed/util"
	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool

	keymap *statefulKeymap

	spinnerC  spinner.Model
	inputC    textinput.Model
	featuredC list.Model
	animesC   list.Model
	episodesC list.Model
	helpC     help.Model

	aggregator *aggregator.Aggregator
	ctx        context.Context

	// exec runs deliveries on the Bubble Tea loop.
	exec promise.Executor

	// fetch holds the one request the UI is waiting for.
	fetch task.Slot

	// deferred is returned from Update after a delivery ran.
	deferred tea.Cmd

	selectedAnime    source.AnimeLink
	progressStatus   string
	lastError        error
	searchSuggestion mo.Option[string]

	width, height int
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState records the current screen for esc unless it is transient.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{loadingState, errorState}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() bool {
	if b.statesHistory.Len() == 0 {
		return false
	}

	b.setState(b.statesHistory.Pop())
	return true
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth, listHeight := width-xx, height-yy
	for _, l := range []*list.Model{&b.featuredC, &b.animesC, &b.episodesC} {
		l.SetSize(listWidth, listHeight)
		l.Help.Width = listWidth
	}

	b.width = width - x
	b.height = height - y
	b.helpC.Width = listWidth
}

func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	return b.spinnerC.Tick
}

func (b *statefulBubble) stopLoading() {
	b.loading = false
}

func (b *statefulBubble) later(cmd tea.Cmd) {
	b.deferred = tea.Batch(b.deferred, cmd)
}

func newBubble(ctx context.Context, agg *aggregator.Aggregator) *statefulBubble {
	bubble := statefulBubble{
		keymap:     newStatefulKeymap(),
		aggregator: agg,
		ctx:        ctx,
	}

	makeList := func(title string, bg lipgloss.Color) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(color.Accent).
			Foreground(color.Accent).
			Padding(0, 0, 0, 1)
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		l := list.New([]list.Item{}, delegate, 0, 0)
		l.KeyMap = bubble.keymap.forList()
		l.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		l.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		l.Title = title
		l.Styles.Title = lipgloss.NewStyle().Foreground(color.Light).Background(bg).Padding(0, 1)
		l.Styles.NoItems = paddingStyle
		l.StatusMessageLifetime = time.Minute
		l.SetFilteringEnabled(false)
		l.SetShowPagination(false)
		return l
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(color.Purple)

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = fmt.Sprintf("Search anime (v%s)", constant.Version)
	bubble.inputC.CharLimit = 80
	bubble.inputC.Prompt = "> "

	bubble.featuredC = makeList("Featured", color.Accent)
	bubble.featuredC.SetStatusBarItemName("anime", "anime")

	bubble.animesC = makeList("Search Results", color.Blue)
	bubble.animesC.SetStatusBarItemName("anime", "anime")

	bubble.episodesC = makeList("Episodes", color.Purple)
	bubble.episodesC.SetStatusBarItemName("episode", "episodes")

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.inputC.Focus()

	return &bubble
}
