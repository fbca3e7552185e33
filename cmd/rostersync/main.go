// Package main provides the entry point for the rostersync CLI tool.
package main

import "github.com/campusops/rostersync/cmd/rostersync/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
