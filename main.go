// Package main is the entry point for the streamscout application.
package main

import (
	"github.com/samber/lo"
	"github.com/streamscout-cli/streamscout/cmd"
	"github.com/streamscout-cli/streamscout/config"
	"github.com/streamscout-cli/streamscout/internal/cache"
	"github.com/streamscout-cli/streamscout/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Initialize asynchronous background maintenance of the response cache.
	go cache.CollectGarbage()

	cmd.Execute()
}
