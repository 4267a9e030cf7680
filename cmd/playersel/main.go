// Package main provides the playersel CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/playersel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
