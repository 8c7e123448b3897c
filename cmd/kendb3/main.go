package main

import (
	"os"

	"github.com/OLEGSHA/kendb3/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
