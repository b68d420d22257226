package main

import (
	"os"

	"github.com/tormodhaugland/gsxpm/cmd/gsxpm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
