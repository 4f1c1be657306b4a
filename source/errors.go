package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAnime is returned when an episode is requested without its parent anime.
	ErrNoAnime = errors.New("no anime selected")

	// ErrNoServer is returned when an episode link is built without a server identifier.
	ErrNoServer = errors.New("no server specified")
)

// MalformedLinkError reports a record field that should hold an absolute URL but does not.
type MalformedLinkError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedLinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
	}

	return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
}

func (e *MalformedLinkError) Unwrap() error {
	return e.Err
}
