// Package where resolves application-specific filesystem paths across platforms.
package where

import (
	"os"
	"path/filepath"

	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "ANIFEED_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory (XDG_CONFIG_HOME or the platform equivalent).
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Responses is where the transport keeps cached response bodies.
func Responses() string {
	return ensureDir(filepath.Join(Cache(), "responses"))
}

// Logs resolves the log directory.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Sources resolves the directory holding custom Lua scrapers.
func Sources() string {
	return ensureDir(filepath.Join(Config(), "sources"))
}

// Queries resolves the search query history file.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}
