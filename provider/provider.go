// Package provider lists the available sources: the built-in JSON catalog, the
// configured HTML sites and the Lua scripts in the sources directory.
package provider

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/provider/custom"
	"github.com/anisan-cli/anifeed/provider/html"
	"github.com/anisan-cli/anifeed/provider/jsonapi"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/anisan-cli/anifeed/util"
	"github.com/anisan-cli/anifeed/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type Kind string

const (
	KindBuiltin Kind = "builtin"
	KindHTML    Kind = "html"
	KindCustom  Kind = "custom"
)

// Provider knows how to create one source.
type Provider struct {
	ID           string
	Name         string
	Kind         Kind
	CreateSource func() (source.Source, error)
}

func (p *Provider) String() string {
	return p.Name
}

// Builtins returns the JSON catalog and every configured HTML site.
func Builtins() []*Provider {
	providers := []*Provider{
		{
			ID:   jsonapi.ID,
			Name: jsonapi.ID,
			Kind: KindBuiltin,
			CreateSource: func() (source.Source, error) {
				return jsonapi.New(jsonapi.ConfigFromViper(), transport.Default())
			},
		},
	}

	configs, err := html.ConfigsFromViper()
	if err != nil {
		log.Warn(err)
		return providers
	}

	for _, config := range configs {
		providers = append(providers, &Provider{
			ID:   config.ID,
			Name: config.ID,
			Kind: KindHTML,
			CreateSource: func() (source.Source, error) {
				return html.New(config, transport.Default())
			},
		})
	}

	return providers
}

// Customs returns one provider per Lua script in the sources directory.
func Customs() []*Provider {
	providers, err := CustomProviders()
	if err != nil {
		log.Warn(err)
	}
	return providers
}

func CustomProviders() ([]*Provider, error) {
	files, err := filesystem.API().ReadDir(where.Sources())
	if err != nil {
		return nil, err
	}

	var providers []*Provider
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".lua" {
			continue
		}

		path := filepath.Join(where.Sources(), f.Name())
		name := util.FileStem(f.Name())

		providers = append(providers, &Provider{
			ID:   custom.IDfromName(name),
			Name: name,
			Kind: KindCustom,
			CreateSource: func() (source.Source, error) {
				return custom.LoadSource(path)
			},
		})
	}

	return providers, nil
}

// All returns built-in providers first, then custom ones.
func All() []*Provider {
	return append(Builtins(), Customs()...)
}

// Get finds a provider by name or ID. An unknown name yields an error that
// suggests the closest known name.
func Get(name string) (*Provider, error) {
	all := All()

	if p, ok := lo.Find(all, func(p *Provider) bool {
		return p.Name == name || p.ID == name
	}); ok {
		return p, nil
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("unknown source %q", name)
	}

	closest := lo.MinBy(all, func(a, b *Provider) bool {
		return levenshtein.Distance(name, a.Name) < levenshtein.Distance(name, b.Name)
	})

	return nil, fmt.Errorf("unknown source %q, did you mean %q?", name, closest.Name)
}

// Sources creates the named sources in order. Empty names default to the
// sources.default setting.
func Sources(names ...string) ([]source.Source, error) {
	names = lo.Filter(names, func(n string, _ int) bool { return strings.TrimSpace(n) != "" })
	if len(names) == 0 {
		names = viper.GetStringSlice(key.DefaultSources)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no sources selected, set %s", key.DefaultSources)
	}

	sources := make([]source.Source, 0, len(names))
	for _, name := range lo.Uniq(names) {
		p, err := Get(name)
		if err != nil {
			return nil, err
		}

		src, err := p.CreateSource()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}

		sources = append(sources, src)
	}

	return sources, nil
}
