// Package main is the entry point for pickup-monitor.
package main

import (
	"os"

	"github.com/donaldgifford/pickup-monitor/cmd/pickup-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
