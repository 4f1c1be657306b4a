package constant

// Lua scraper entry points. A custom source must define all of them as globals.
const (
	FeaturedAnimesFn = "FeaturedAnimes"
	LatestAnimesFn   = "LatestAnimes"
	SearchAnimesFn   = "SearchAnimes"
	AnimeEpisodesFn  = "AnimeEpisodes"
)

// SourceTemplate is a Go text/template for scaffolding new Lua scraper files.
const SourceTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias anime { title: string, url: string, cover: string }
---@alias episode { id: string, url: string, server: string|nil }


----- IMPORTS -----
--- END IMPORTS ---



----- VARIABLES -----
local base = "{{ .URL }}"
--- END VARIABLES ---



----- MAIN -----

--- Popular or trending titles, in site order.
-- @return anime[]
function {{ .FeaturedAnimesFn }}()
	return {}
end


--- Recently updated titles, in site order.
-- @return anime[]
function {{ .LatestAnimesFn }}()
	return {}
end


--- Searches for anime with given query.
-- @param query string Query to search for
-- @return anime[]
function {{ .SearchAnimesFn }}(query)
	return {}
end


--- Lists the episodes of an anime.
-- @param animeURL string Canonical URL of the anime
-- @return episode[]
function {{ .AnimeEpisodesFn }}(animeURL)
	return {}
end


--- END MAIN ---
-- ex: ts=4 sw=4 et filetype=lua
`
