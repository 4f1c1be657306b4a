// Package style exposes small render helpers over lipgloss.
package style

import (
	"github.com/anisan-cli/anifeed/color"
	"github.com/charmbracelet/lipgloss"
)

func Fg(c lipgloss.Color) func(string) string {
	s := lipgloss.NewStyle().Foreground(c)
	return func(v string) string { return s.Render(v) }
}

// Tag renders s as a padded badge.
func Tag(fg, bg lipgloss.Color) func(string) string {
	s := lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 1)
	return func(v string) string { return s.Render(v) }
}

var (
	Faint  = lipgloss.NewStyle().Faint(true).Render
	Bold   = lipgloss.NewStyle().Bold(true).Render
	Italic = lipgloss.NewStyle().Italic(true).Render
)

var (
	Title      = Tag(color.Light, color.Accent)
	ErrorTitle = Tag(color.Light, color.Red)
	Success    = Fg(color.Green)
	Failure    = Fg(color.Red)
	Warning    = Fg(color.Yellow)
)
