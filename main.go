// Package main is the entry point of anifeed.
package main

import (
	"github.com/anisan-cli/anifeed/cmd"
	"github.com/anisan-cli/anifeed/config"
	"github.com/anisan-cli/anifeed/internal/cache"
	"github.com/anisan-cli/anifeed/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}
