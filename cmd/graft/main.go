package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/graft/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var g globals

	cmd := &cobra.Command{
		Use:   "graft",
		Short: "Server-side rendering and hydration marking for component trees",
		Long: `graft renders custom-element components on the server.

It expands every registered component in an HTML document, distributes the
document's content into the components' slots, and marks the result so a
client can reattach to it without re-rendering:

  • Template components declared in graft.json
  • Named and default slots with fallback content
  • Hydration markers for client-side reattachment
  • Page storage on disk or S3 with brotli variants
  • A live preview channel over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to graft.json (default: search from the working directory)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		hydrateCmd(&g),
		serveCmd(&g),
		componentsCmd(&g),
		versionCmd(),
	)
	return cmd
}
