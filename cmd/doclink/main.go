// Package main is the entry point for the doclink CLI.
//
//	@title						Doclink API
//	@version					1.0
//	@description				Document management service with smart links, workflows, and per-object access control
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						X-API-KEY
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags during release builds.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "doclink",
		Short: "Doclink document management server",
		Long: `Doclink stores typed documents with versioned content, resolves smart
links between documents through metadata conditions, and drives workflow
state machines with manual, timed, and event-fired transitions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), seedCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "doclink:", err)
		os.Exit(1)
	}
}
