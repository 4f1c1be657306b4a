// Package cache keeps upstream response bodies on disk for a configurable lifetime.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/where"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func ttl() time.Duration {
	return viper.GetDuration(key.CacheTTL)
}

// GenerateKey derives a stable file name from the request identity.
// Whitespace and case in parts are ignored.
func GenerateKey(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToLower(strings.Join(strings.Fields(p), "")))
		b.WriteByte(0)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}

// Read decodes the entry stored under key into target.
// It reports false if the entry is missing, expired or unreadable.
func Read(key string, target any) bool {
	path := filepath.Join(where.Responses(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > ttl() {
		return false
	}

	f, err := filesystem.API().Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(target); err != nil {
		log.Warnf("cache: dropping unreadable entry %s: %s", key, err)
		_ = filesystem.API().Remove(path)
		return false
	}

	return true
}

// Write stores data under key. The entry is written to a temporary file of its own
// and renamed into place, so concurrent writers of one key never share a file.
func Write(key string, data any) error {
	dir := where.Responses()

	f, err := filesystem.API().TempFile(dir, key+"-*")
	if err != nil {
		return err
	}
	tmpPath := f.Name()

	if err := json.NewEncoder(f).Encode(data); err != nil {
		_ = f.Close()
		_ = filesystem.API().Remove(tmpPath)
		return err
	}

	if err := f.Close(); err != nil {
		_ = filesystem.API().Remove(tmpPath)
		return err
	}

	return filesystem.API().Rename(tmpPath, filepath.Join(dir, key))
}

// CollectGarbage removes expired entries. It returns the number of files removed.
func CollectGarbage() int {
	var (
		removed int
		expiry  = ttl()
	)

	_ = afero.Walk(filesystem.API(), where.Responses(), func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if time.Since(info.ModTime()) > expiry {
			if filesystem.API().Remove(path) == nil {
				removed++
			}
		}

		return nil
	})

	if removed > 0 {
		log.Infof("cache: removed %d expired entries", removed)
	}

	return removed
}
