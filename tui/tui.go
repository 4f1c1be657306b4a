// Package tui is the interactive Bubble Tea browser.
package tui

import (
	"context"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/promise"
	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Aggregator *aggregator.Aggregator
}

// Run blocks until the user quits. Every in-flight fetch is cancelled on exit.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(ctx, options.Aggregator)
	program := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx))
	bubble.exec = programExecutor(program)

	defer bubble.fetch.Cancel()

	_, err := program.Run()
	return err
}

// runMsg carries a delivery onto the Bubble Tea loop.
type runMsg func()

// programExecutor posts deliveries to p. Send is detached because a delivery
// may be scheduled from inside Update itself.
func programExecutor(p *tea.Program) promise.Executor {
	return promise.ExecutorFunc(func(fn func()) {
		go p.Send(runMsg(fn))
	})
}
