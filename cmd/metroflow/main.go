// Package main is the entry point of the metroflow CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/metroflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
