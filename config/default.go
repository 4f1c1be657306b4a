// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes both the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []string:
		return "[]string"
	case []map[string]any:
		return "[]table"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string, env bool) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		if env {
			EnvExposed = append(EnvExposed, k)
		}
	}

	register(key.DefaultSources, []string{"jsonapi"}, "Sources to browse by default.\nType \"anifeed sources list\" to show available sources", true)
	register(key.JSONAPIBaseURL, "https://api.consumet.org/anime/gogoanime", "Base endpoint of the JSON catalog API", true)
	register(key.JSONAPIAnimeURLTemplate, "https://anitaku.pe/category/{id}", "Canonical anime page URL.\n{id} is replaced with the catalog id", true)
	register(key.JSONAPIServer, "gogocdn", "Server identifier attached to episode links of the JSON catalog", true)
	register(key.HTMLSources, []map[string]any{}, "Selector-driven HTML sources.\nEach entry needs id, name, featured_url, latest_url, search_url, item, title, link and image", false)
	register(key.SourcesUpdateURL, "https://raw.githubusercontent.com/anisan-cli/anifeed-scrapers/main/", "Where \"anifeed sources update\" fetches Lua scrapers from", true)
	register(key.TransportTimeout, 30*time.Second, "Per-request timeout", true)
	register(key.TransportRetries, 1, "Retries for idempotent requests that failed at the network level", true)
	register(key.TransportRateLimit, 5.0, "Maximum requests per second across all sources. 0 disables the limiter", true)
	register(key.TransportRateBurst, 5, "Burst size of the request limiter", true)
	register(key.TransportImpersonate, false, "Use a browser TLS fingerprint for outgoing requests", true)
	register(key.TransportBreakerThreshold, 3, "Consecutive failures after which a host is temporarily skipped", true)
	register(key.TransportBreakerCooldown, 30*time.Second, "How long a failing host is skipped", true)
	register(key.CacheEnable, true, "Cache search and episode responses on disk", true)
	register(key.CacheTTL, 6*time.Hour, "Lifetime of cached responses", true)
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching", true)
	register(key.ServerAddress, "127.0.0.1:8089", "Listen address of \"anifeed serve\"", true)
	register(key.ServerRateLimit, 10.0, "Requests per second accepted by the HTTP API. 0 disables limiting", true)
	register(key.ServerRateBurst, 20, "Burst size of the HTTP API rate limiter", true)
	register(key.TUIShowURLs, true, "Show URLs under list items", true)
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain", true)
	register(key.LogsWrite, false, "Write logs", true)
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace", true)
	register(key.LogsJson, false, "Use json format for logs", true)
	register(key.CliColored, true, "Enable colored CLI output", true)
	register(key.CliVersionCheck, true, "Check for a newer release when running \"anifeed version\"", true)
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
