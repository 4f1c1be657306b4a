package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/transport"
)

type SearchResponse struct {
	Query   string              `json:"query"`
	Results []source.AnimeLink `json:"results"`
}

type EpisodesResponse struct {
	Anime    source.AnimeLink     `json:"anime"`
	Episodes []source.EpisodeLink `json:"episodes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var p *promise.Promise[source.FeaturedContainer]
	if id := r.URL.Query().Get("source"); id != "" {
		src, ok := s.aggregator.Source(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", aggregator.ErrUnknownSource, id))
			return
		}
		p = aggregator.FeaturedOf(ctx, src)
	} else {
		p = s.aggregator.Featured(ctx).Promise
	}

	container, err := p.Await(ctx)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	writeJSON(w, http.StatusOK, container)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing query parameter q"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var p *promise.Promise[[]source.AnimeLink]
	if id := r.URL.Query().Get("source"); id != "" {
		src, ok := s.aggregator.Source(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", aggregator.ErrUnknownSource, id))
			return
		}
		p = src.Search(ctx, q)
	} else {
		p = s.aggregator.Search(ctx, q).Promise
	}

	results, err := p.Await(ctx)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	if results == nil {
		results = []source.AnimeLink{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Results: results})
}

func (s *Server) episodes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	anime, err := source.NewAnimeLink(query.Get("title"), query.Get("url"), "", query.Get("source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	episodes, err := s.aggregator.Episodes(ctx, anime).Await(ctx)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	if episodes == nil {
		episodes = []source.EpisodeLink{}
	}

	writeJSON(w, http.StatusOK, EpisodesResponse{Anime: anime, Episodes: episodes})
}

func statusOf(err error) int {
	var (
		malformed *source.MalformedLinkError
		transErr  *transport.TransportError
		decodeErr *transport.DecodeError
	)

	switch {
	case errors.Is(err, aggregator.ErrUnknownSource):
		return http.StatusNotFound
	case errors.Is(err, source.ErrNoAnime):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	// a malformed link here came from an upstream record, request input is checked before any call
	case errors.As(err, &transErr), errors.As(err, &decodeErr), errors.As(err, &malformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
