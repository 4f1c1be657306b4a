// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "anifeed"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is the default HTTP User-Agent string used for requests to upstream catalogs.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Banner is printed above the root command help.
const Banner = `   __ _ _ __ (_)/ _| ___  ___  __| |
  / _' | '_ \| | |_ / _ \/ _ \/ _' |
 | (_| | | | | |  _|  __/  __/ (_| |
  \__,_|_| |_|_|_|  \___|\___|\__,_|`
