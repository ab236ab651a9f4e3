package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	rootCmd = newRootCommand()
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Episteme server - research case backend",
		Long: `Episteme server is the backend for collaborative research cases.

The server supports:
- Append-only event streams per research case
- Derived briefs with citations, recomputed in the background
- Passage embedding and semantic search over case material
- Live event streaming to connected clients`,
		// Run the serve command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (optional, uses env vars by default)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(serveCmd)
	root.AddCommand(migrateCmd)
	root.AddCommand(gentokenCmd)
	root.AddCommand(versionCmd)
	root.AddCommand(healthcheckCmd)
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
