// Package html adapts catalog sites that only serve HTML, driven by CSS selectors
// from configuration rather than code.
package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config describes one site. Selectors other than Item are relative to each item;
// an empty Title or Link selector means the item itself.
type Config struct {
	ID          string `mapstructure:"id" json:"id"`
	Name        string `mapstructure:"name" json:"name"`
	FeaturedURL string `mapstructure:"featured_url" json:"featured_url"`
	LatestURL   string `mapstructure:"latest_url" json:"latest_url"`

	// SearchURL contains {query}. It is required, since search fans out to every source.
	SearchURL string `mapstructure:"search_url" json:"search_url,omitempty"`

	// EpisodesURL contains {url}, the anime's canonical URL. Empty means the anime page itself.
	EpisodesURL string `mapstructure:"episodes_url" json:"episodes_url,omitempty"`

	Item    string `mapstructure:"item" json:"item"`
	Title   string `mapstructure:"title" json:"title,omitempty"`
	Link    string `mapstructure:"link" json:"link,omitempty"`
	Image   string `mapstructure:"image" json:"image,omitempty"`
	Episode string `mapstructure:"episode" json:"episode,omitempty"`
	Server  string `mapstructure:"server" json:"server,omitempty"`
}

// ConfigsFromViper reads the configured list of HTML sources.
func ConfigsFromViper() ([]Config, error) {
	var configs []Config
	if err := viper.UnmarshalKey(key.HTMLSources, &configs); err != nil {
		return nil, fmt.Errorf("%s: %w", key.HTMLSources, err)
	}
	return configs, nil
}

func (c Config) validate() error {
	switch {
	case c.ID == "":
		return errors.New("html source: id is required")
	case c.FeaturedURL == "" || c.LatestURL == "":
		return fmt.Errorf("html source %s: featured_url and latest_url are required", c.ID)
	case !strings.Contains(c.SearchURL, "{query}"):
		return fmt.Errorf("html source %s: search_url with {query} is required", c.ID)
	case c.Item == "":
		return fmt.Errorf("html source %s: item selector is required", c.ID)
	}
	return nil
}

// Source scrapes one configured site.
type Source struct {
	config    Config
	transport transport.Transport
}

func New(config Config, t transport.Transport) (*Source, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	if config.Server == "" {
		config.Server = config.ID
	}

	return &Source{config: config, transport: t}, nil
}

func (s *Source) ID() string { return s.config.ID }

func (s *Source) Name() string {
	return lo.Ternary(s.config.Name == "", s.config.ID, s.config.Name)
}

func (s *Source) Featured(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return s.animes(ctx, s.config.FeaturedURL, false)
}

func (s *Source) Latest(ctx context.Context) *promise.Promise[[]source.AnimeLink] {
	return s.animes(ctx, s.config.LatestURL, false)
}

func (s *Source) Search(ctx context.Context, query string) *promise.Promise[[]source.AnimeLink] {
	endpoint := strings.ReplaceAll(s.config.SearchURL, "{query}", url.QueryEscape(query))
	return s.animes(ctx, endpoint, true)
}

func (s *Source) Episodes(ctx context.Context, anime source.AnimeLink) *promise.Promise[[]source.EpisodeLink] {
	if anime.IsZero() {
		return promise.Reject[[]source.EpisodeLink](source.ErrNoAnime)
	}

	if s.config.Episode == "" {
		return promise.Reject[[]source.EpisodeLink](fmt.Errorf("%s: no episode selector configured", s.ID()))
	}

	endpoint := anime.URL()
	if s.config.EpisodesURL != "" {
		endpoint = strings.ReplaceAll(s.config.EpisodesURL, "{url}", url.QueryEscape(anime.URL()))
	}

	return promise.Then(s.document(ctx, endpoint, true), func(page document) ([]source.EpisodeLink, error) {
		return mapSelection(page.doc.Find(s.config.Episode), func(sel *goquery.Selection) (source.EpisodeLink, error) {
			href, err := resolve(page.url, sel, "href", "url")
			if err != nil {
				return source.EpisodeLink{}, err
			}

			id := strings.TrimSpace(sel.Text())
			if id == "" {
				id = href
			}

			return source.NewEpisodeLink(anime, s.config.Server, id, href)
		})
	})
}

type document struct {
	url *url.URL
	doc *goquery.Document
}

func (s *Source) document(ctx context.Context, endpoint string, cacheable bool) *promise.Promise[document] {
	resp := s.transport.Request(ctx, endpoint, transport.Options{Cache: cacheable})

	return promise.Then(resp, func(r *transport.Response) (document, error) {
		base, err := url.Parse(r.URL)
		if err != nil {
			return document{}, &transport.DecodeError{URL: r.URL, Err: err}
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			return document{}, &transport.DecodeError{URL: r.URL, Err: err}
		}

		return document{url: base, doc: doc}, nil
	})
}

func (s *Source) animes(ctx context.Context, endpoint string, cacheable bool) *promise.Promise[[]source.AnimeLink] {
	return promise.Then(s.document(ctx, endpoint, cacheable), func(page document) ([]source.AnimeLink, error) {
		items := page.doc.Find(s.config.Item)
		log.WithFields(log.Fields{"source": s.ID(), "url": page.url.String(), "items": items.Length()}).Debug("html: parsed")

		return mapSelection(items, func(item *goquery.Selection) (source.AnimeLink, error) {
			return s.toAnime(page.url, item)
		})
	})
}

func (s *Source) toAnime(base *url.URL, item *goquery.Selection) (source.AnimeLink, error) {
	title := strings.TrimSpace(within(item, s.config.Title).Text())
	if title == "" {
		title = strings.TrimSpace(within(item, s.config.Link).AttrOr("title", ""))
	}

	link, err := resolve(base, within(item, s.config.Link), "href", "url")
	if err != nil {
		return source.AnimeLink{}, err
	}

	var cover string
	if s.config.Image != "" {
		img := item.Find(s.config.Image).First()
		attr := lo.Ternary(img.AttrOr("data-src", "") != "", "data-src", "src")
		if cover, err = resolve(base, img, attr, "cover"); err != nil {
			return source.AnimeLink{}, err
		}
	}

	return source.NewAnimeLink(title, link, cover, s.ID())
}

func within(item *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return item
	}
	return item.Find(selector).First()
}

// resolve reads attr from sel and resolves it against base.
// Failures are reported as a malformed link field.
func resolve(base *url.URL, sel *goquery.Selection, attr, field string) (string, error) {
	raw, ok := sel.Attr(attr)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", &source.MalformedLinkError{Field: field, Value: raw, Err: fmt.Errorf("missing %s", attr)}
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", &source.MalformedLinkError{Field: field, Value: raw, Err: err}
	}

	return base.ResolveReference(ref).String(), nil
}

// mapSelection converts every node in order; the first failure fails the whole list.
func mapSelection[T any](sel *goquery.Selection, convert func(*goquery.Selection) (T, error)) ([]T, error) {
	out := make([]T, 0, sel.Length())

	var err error
	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		var v T
		if v, err = convert(s); err != nil {
			err = fmt.Errorf("item %d: %w", i, err)
			return false
		}
		out = append(out, v)
		return true
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
