// Package custom runs user supplied Lua scrapers as sources.
package custom

import (
	"fmt"

	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/internal/scraper"
	"github.com/anisan-cli/anifeed/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// IDfromName derives the source ID of a script from its file stem.
func IDfromName(name string) string {
	return name + " custom"
}

var required = []string{
	constant.FeaturedAnimesFn,
	constant.LatestAnimesFn,
	constant.SearchAnimesFn,
	constant.AnimeEpisodesFn,
}

// LoadSource runs the script at path and checks that it defines every entry point.
func LoadSource(path string) (*Source, error) {
	state := lua.NewState()
	libs.Preload(state)
	registerTLSClient(state)

	if err := scraper.PreCompileAndLoad(state, path); err != nil {
		state.Close()
		return nil, err
	}

	name := util.FileStem(path)

	for _, fn := range required {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			state.Close()
			return nil, fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}

	return newSource(name, state), nil
}
