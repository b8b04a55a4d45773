package main

import (
	"os"

	"github.com/unhappyben/fx-sync/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
