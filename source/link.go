package source

import (
	"errors"
	"net/url"
)

// Kind tags the variants of Link.
type Kind int

const (
	KindAnime Kind = iota + 1
	KindEpisode
)

func (k Kind) String() string {
	switch k {
	case KindAnime:
		return "anime"
	case KindEpisode:
		return "episode"
	default:
		return "unknown"
	}
}

// Link is either an AnimeLink or an EpisodeLink. The set is closed.
type Link interface {
	Kind() Kind
	SourceID() string
	URL() string

	link()
}

// Match branches on the variant of l. Both cases must be handled.
func Match[R any](l Link, anime func(AnimeLink) R, episode func(EpisodeLink) R) R {
	switch v := l.(type) {
	case AnimeLink:
		return anime(v)
	case EpisodeLink:
		return episode(v)
	default:
		panic("source: unknown link variant")
	}
}

// Equal reports whether two links identify the same unit: same kind,
// same canonical URL and same producing source.
func Equal(a, b Link) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Kind() != b.Kind() || a.SourceID() != b.SourceID() {
		return false
	}

	if a.Kind() == KindEpisode {
		ea, eb := a.(EpisodeLink), b.(EpisodeLink)
		return ea.parent.url == eb.parent.url && ea.server == eb.server && ea.episode == eb.episode
	}

	return a.URL() == b.URL()
}

var errNotAbsolute = errors.New("not an absolute http(s) url")

// ParseURL accepts only absolute http or https URLs with a host.
func ParseURL(field, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &MalformedLinkError{Field: field, Value: raw, Err: err}
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &MalformedLinkError{Field: field, Value: raw, Err: errNotAbsolute}
	}

	return u, nil
}
