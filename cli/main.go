package main

import (
	"os"

	"github.com/satishbabariya/expand-go/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
