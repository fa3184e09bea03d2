package main

import (
	"os"

	"github.com/xupit3r/bitgrid/cmd/bitgrid/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
