package provider

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/anisan-cli/anifeed/where"
	"github.com/samber/lo"
)

// Update downloads each file from baseURL and replaces the local script when its
// SHA-256 differs. Files default to the scripts already installed.
// It returns the names of the files that changed.
func Update(ctx context.Context, t transport.Transport, baseURL string, files ...string) ([]string, error) {
	if len(files) == 0 {
		installed, err := CustomProviders()
		if err != nil {
			return nil, err
		}
		files = lo.Map(installed, func(p *Provider, _ int) string { return p.Name + ".lua" })
	}

	baseURL = strings.TrimSuffix(baseURL, "/") + "/"

	var updated []string
	for _, file := range files {
		changed, err := updateFile(ctx, t, baseURL, file)
		if err != nil {
			return updated, fmt.Errorf("%s: %w", file, err)
		}

		if changed {
			updated = append(updated, file)
		}
	}

	log.Infof("sources update: %d of %d scripts changed", len(updated), len(files))
	return updated, nil
}

func updateFile(ctx context.Context, t transport.Transport, baseURL, file string) (bool, error) {
	if filepath.Base(file) != file || filepath.Ext(file) != ".lua" {
		return false, fmt.Errorf("invalid script name")
	}

	resp, err := t.Request(ctx, baseURL+file, transport.Options{}).Await(ctx)
	if err != nil {
		return false, err
	}

	localPath := filepath.Join(where.Sources(), file)
	if local, err := filesystem.API().ReadFile(localPath); err == nil {
		remoteHash, localHash := sha256.Sum256(resp.Body), sha256.Sum256(local)
		if bytes.Equal(remoteHash[:], localHash[:]) {
			return false, nil
		}
	}

	tmpPath := localPath + ".tmp"
	if err := filesystem.API().WriteFile(tmpPath, resp.Body, 0644); err != nil {
		return false, err
	}

	if err := filesystem.API().Rename(tmpPath, localPath); err != nil {
		_ = filesystem.API().Remove(tmpPath)
		return false, err
	}

	log.Infof("sources update: replaced %s", file)
	return true, nil
}
