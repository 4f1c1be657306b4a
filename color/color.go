// Package color holds the terminal colors used by the CLI and the TUI.
package color

import "github.com/charmbracelet/lipgloss"

// ANSI colors, so the user's terminal theme decides the exact shade.
var (
	Red    = lipgloss.Color("1")
	Green  = lipgloss.Color("2")
	Yellow = lipgloss.Color("3")
	Blue   = lipgloss.Color("4")
	Purple = lipgloss.Color("5")
	Cyan   = lipgloss.Color("6")
	White  = lipgloss.Color("7")
	Gray   = lipgloss.Color("8")
)

var (
	Accent   = lipgloss.Color("62")
	Light    = lipgloss.Color("230")
	Featured = lipgloss.Color("#ffb703")
)
