// Package main is the dimplot command-line tool.
package main

import (
	"os"

	"github.com/njchilds90/dimplot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
