package version

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/anisan-cli/anifeed/where"
	"github.com/metafates/gache"
)

// ReleasesURL answers with the latest published release.
const ReleasesURL = "https://api.github.com/repos/anisan-cli/anifeed/releases/latest"

var versionCacher *gache.Cache[string]

func cacher() *gache.Cache[string] {
	if versionCacher == nil {
		versionCacher = gache.New[string](&gache.Options{
			Path:       filepath.Join(where.Cache(), "version.json"),
			Lifetime:   48 * time.Hour,
			FileSystem: &filesystem.GacheFs{},
		})
	}
	return versionCacher
}

type release struct {
	TagName string `json:"tag_name"`
}

// Latest resolves the latest release version without the "v" prefix.
// The answer is cached for two days.
func Latest(ctx context.Context, t transport.Transport, releasesURL string) *promise.Promise[string] {
	if cached, expired, err := cacher().Get(); err == nil && !expired && cached != "" {
		return promise.Resolve(cached)
	}

	resp := t.Request(ctx, releasesURL, transport.Options{
		Header: map[string]string{"Accept": "application/vnd.github+json"},
	})

	return promise.Then(transport.Decode[release](resp), func(r release) (string, error) {
		if r.TagName == "" {
			return "", errors.New("empty tag name")
		}

		v := strings.TrimPrefix(r.TagName, "v")
		_ = cacher().Set(v)
		return v, nil
	})
}
