// Package main provides vmctl, the offline admin tool for Versemark.
package main

import (
	"os"

	"github.com/versemark/versemark-server/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
