package main

import (
	"os"

	"github.com/confscout/speaker-scout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
