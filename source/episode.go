package source

import "encoding/json"

// EpisodeLink identifies one episode of an anime on a given server.
type EpisodeLink struct {
	parent  AnimeLink
	server  string
	episode string
	url     string
}

// NewEpisodeLink requires a parent and a server. rawURL may be empty.
func NewEpisodeLink(parent AnimeLink, server, episode, rawURL string) (EpisodeLink, error) {
	if parent.IsZero() {
		return EpisodeLink{}, ErrNoAnime
	}

	if server == "" {
		return EpisodeLink{}, ErrNoServer
	}

	var link string
	if rawURL != "" {
		u, err := ParseURL("episode url", rawURL)
		if err != nil {
			return EpisodeLink{}, err
		}
		link = u.String()
	}

	return EpisodeLink{
		parent:  parent,
		server:  server,
		episode: episode,
		url:     link,
	}, nil
}

func (EpisodeLink) link() {}

func (EpisodeLink) Kind() Kind { return KindEpisode }

func (e EpisodeLink) Parent() AnimeLink { return e.parent }
func (e EpisodeLink) Server() string    { return e.server }
func (e EpisodeLink) Episode() string   { return e.episode }
func (e EpisodeLink) SourceID() string  { return e.parent.sourceID }

// URL returns the episode page if the source exposes one, else the parent's URL.
func (e EpisodeLink) URL() string {
	if e.url != "" {
		return e.url
	}

	return e.parent.url
}

func (e EpisodeLink) String() string {
	return e.parent.title + " - " + e.episode
}

func (e EpisodeLink) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string    `json:"kind"`
		Parent  AnimeLink `json:"parent"`
		Server  string    `json:"server"`
		Episode string    `json:"episode"`
		URL     string    `json:"url"`
	}{
		Kind:    KindEpisode.String(),
		Parent:  e.parent,
		Server:  e.server,
		Episode: e.episode,
		URL:     e.URL(),
	})
}
