// Package main is the entry point for the beanbot CLI.
package main

import (
	"os"

	"beanbot/cmd/beanbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
