// Package jsonapi adapts a paginated JSON catalog API.
//
//	GET {base}/top-airing?page=1        featured
//	GET {base}/recent-episodes?page=1   latest
//	GET {base}/{query}?page=1           search
//	GET {base}/info/{id}                episodes
//
// Listings have the shape {"results": [{"title", "id", "image", "episodenumber"?}]}.
// The canonical URL of an entry is the configured template with {id} substituted.
package jsonapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/anisan-cli/anifeed/auth"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const (
	ID   = "jsonapi"
	Name = "JSON catalog"

	idPlaceholder = "{id}"
)

type Config struct {
	BaseURL          string
	AnimeURLTemplate string
	Server           string
}

func ConfigFromViper() Config {
	return Config{
		BaseURL:          viper.GetString(key.JSONAPIBaseURL),
		AnimeURLTemplate: viper.GetString(key.JSONAPIAnimeURLTemplate),
		Server:           viper.GetString(key.JSONAPIServer),
	}
}

// Source talks to one catalog API. It holds configuration only.
type Source struct {
	config    Config
	transport transport.Transport

	// token is read from the keyring once, so no call touches it on the caller's goroutine.
	token mo.Option[string]
}

func New(config Config, t transport.Transport) (*Source, error) {
	if _, err := url.Parse(config.BaseURL); err != nil || config.BaseURL == "" {
		return nil, fmt.Errorf("jsonapi: invalid base url %q", config.BaseURL)
	}

	if !strings.Contains(config.AnimeURLTemplate, idPlaceholder) {
		return nil, fmt.Errorf("jsonapi: anime url template %q has no %s", config.AnimeURLTemplate, idPlaceholder)
	}

	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	return &Source{config: config, transport: t, token: auth.Token(ID)}, nil
}

func (s *Source) ID() string   { return ID }
func (s *Source) Name() string { return Name }

func (s *Source) Featured(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return s.listing(ctx, s.config.BaseURL+"/top-airing", false)
}

func (s *Source) Latest(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return s.listing(ctx, s.config.BaseURL+"/recent-episodes", false)
}

func (s *Source) Search(ctx context.Context, query string) *promise.Promise[[]source.AnimeLink] {
	return s.listing(ctx, s.config.BaseURL+"/"+url.PathEscape(query), true)
}

func (s *Source) Episodes(ctx context.Context, anime source.AnimeLink) *promise.Promise[[]source.EpisodeLink] {
	if anime.IsZero() {
		return promise.Reject[[]source.EpisodeLink](source.ErrNoAnime)
	}

	id, err := s.idOf(anime)
	if err != nil {
		return promise.Reject[[]source.EpisodeLink](err)
	}

	resp := s.transport.Request(ctx, s.config.BaseURL+"/info/"+url.PathEscape(id), s.options(true))

	return promise.Then(transport.Decode[info](resp), func(i info) ([]source.EpisodeLink, error) {
		episodes := make([]source.EpisodeLink, 0, len(i.Episodes))
		for n, r := range i.Episodes {
			ep, err := source.NewEpisodeLink(anime, s.config.Server, r.ID, r.URL)
			if err != nil {
				return nil, fmt.Errorf("episode %d: %w", n, err)
			}
			episodes = append(episodes, ep)
		}
		return episodes, nil
	})
}

func (s *Source) listing(ctx context.Context, endpoint string, cacheable bool) *promise.Promise[[]source.AnimeLink] {
	opts := s.options(cacheable)
	opts.Query = url.Values{"page": {"1"}}

	resp := s.transport.Request(ctx, endpoint, opts)

	return promise.Then(transport.Decode[listing](resp), func(l listing) ([]source.AnimeLink, error) {
		animes := make([]source.AnimeLink, 0, len(l.Results))
		for n, r := range l.Results {
			anime, err := s.toAnime(r)
			if err != nil {
				return nil, fmt.Errorf("result %d: %w", n, err)
			}
			animes = append(animes, anime)
		}
		return animes, nil
	})
}

func (s *Source) options(cacheable bool) transport.Options {
	opts := transport.Options{Cache: cacheable}

	if token, ok := s.token.Get(); ok {
		opts.Header = map[string]string{"Authorization": "Bearer " + token}
	}

	return opts
}

func (s *Source) toAnime(r record) (source.AnimeLink, error) {
	if strings.TrimSpace(r.ID) == "" {
		return source.AnimeLink{}, &source.MalformedLinkError{Field: "id", Value: r.ID}
	}

	canonical := strings.ReplaceAll(s.config.AnimeURLTemplate, idPlaceholder, url.PathEscape(r.ID))
	return source.NewAnimeLink(r.Title, canonical, r.Image, ID)
}

// idOf recovers the catalog id from a canonical URL built by toAnime.
func (s *Source) idOf(anime source.AnimeLink) (string, error) {
	prefix, suffix, _ := strings.Cut(s.config.AnimeURLTemplate, idPlaceholder)
	link := anime.URL()

	if !strings.HasPrefix(link, prefix) || !strings.HasSuffix(link, suffix) || len(link) <= len(prefix)+len(suffix) {
		return "", fmt.Errorf("%s is not a %s url", link, Name)
	}

	return url.PathUnescape(link[len(prefix) : len(link)-len(suffix)])
}
