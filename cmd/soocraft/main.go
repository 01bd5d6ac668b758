package main

import (
	"os"

	"github.com/outcome-tools/soocraft/internal/soocraft/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
