package main

import (
	"github.com/samber/lo"

	"github.com/anisan-cli/spacetime/cmd"
	"github.com/anisan-cli/spacetime/config"
	"github.com/anisan-cli/spacetime/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	cmd.Execute()
}
