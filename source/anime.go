package source

import (
	"encoding/json"

)

// AnimeLink identifies a browsable anime on one source.
type AnimeLink struct {
	title    string
	url      string
	cover    string
	sourceID string
}

// NewAnimeLink validates rawURL, which is required, and rawCover, which may be empty.
func NewAnimeLink(title, rawURL, rawCover, sourceID string) (AnimeLink, error) {
	u, err := ParseURL("url", rawURL)
	if err != nil {
		return AnimeLink{}, err
	}

	var cover string
	if rawCover != "" {
		c, err := ParseURL("cover", rawCover)
		if err != nil {
			return AnimeLink{}, err
		}
		cover = c.String()
	}

	return AnimeLink{
		title:    title,
		url:      u.String(),
		cover:    cover,
		sourceID: sourceID,
	}, nil
}

func (AnimeLink) link() {}

func (AnimeLink) Kind() Kind { return KindAnime }

func (a AnimeLink) Title() string    { return a.title }
func (a AnimeLink) URL() string      { return a.url }
func (a AnimeLink) Cover() string    { return a.cover }
func (a AnimeLink) SourceID() string { return a.sourceID }

// IsZero reports whether a was never constructed.
func (a AnimeLink) IsZero() bool {
	return a.url == ""
}

func (a AnimeLink) String() string {
	return a.title
}

type animeJSON struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Cover  string `json:"cover,omitempty"`
	Source string `json:"source"`
}

func (a AnimeLink) MarshalJSON() ([]byte, error) {
	return json.Marshal(animeJSON{
		Kind:   KindAnime.String(),
		Title:  a.title,
		URL:    a.url,
		Cover:  a.cover,
		Source: a.sourceID,
	})
}
