// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Sources - selection and configuration of upstream catalog adapters.
const (
	DefaultSources          = "sources.default"
	JSONAPIBaseURL          = "sources.jsonapi.base_url"
	JSONAPIAnimeURLTemplate = "sources.jsonapi.anime_url_template"
	JSONAPIServer           = "sources.jsonapi.server"
	HTMLSources             = "sources.html"
	SourcesUpdateURL        = "sources.update_url"
)

// Transport - the HTTP collaborator every adapter talks through.
const (
	TransportTimeout          = "transport.timeout"
	TransportRetries          = "transport.retries"
	TransportRateLimit        = "transport.rate_limit"
	TransportRateBurst        = "transport.rate_burst"
	TransportImpersonate      = "transport.impersonate"
	TransportBreakerThreshold = "transport.breaker_threshold"
	TransportBreakerCooldown  = "transport.breaker_cooldown"
)

// Response cache.
const (
	CacheEnable = "cache.enable"
	CacheTTL    = "cache.ttl"
)

const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// HTTP API served by "anifeed serve".
const (
	ServerAddress   = "server.address"
	ServerRateLimit = "server.rate_limit"
	ServerRateBurst = "server.rate_burst"
)

const (
	TUIShowURLs = "tui.show_urls"
)

const (
	IconsVariant = "icons.variant"
)

// Logging.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
