package main

import (
	"os"

	"github.com/haatos/freestyle-multibranch/cmd/multibranch/commands"
)

var version = "dev"

func main() {
	commands.SetVersion(version)
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
