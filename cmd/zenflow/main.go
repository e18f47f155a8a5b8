// Package main is the entry point for the zenflow application.
// With no command it starts the TUI; subcommands cover scripting, the HTTP
// API, reports, reminders, imports and backups.
package main

import (
	"fmt"
	"os"
)

// Version information - set at build time with -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := newRootCmd(newApp())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
