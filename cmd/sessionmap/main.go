package main

import (
	"os"

	"github.com/rustyeddy/sessionmap/cmd/sessionmap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
