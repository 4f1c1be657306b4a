package tui

type state int

const (
	loadingState state = iota
	errorState
	featuredState
	searchState
	animesState
	episodesState
)
