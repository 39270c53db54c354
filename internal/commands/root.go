package commands

import (
	"github.com/spf13/cobra"

	"cashflow/internal/cli"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands
// registered. Without a subcommand it serves the dashboard.
func NewRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:     "cashflow",
		Short:   "Cash-flow dashboard for small businesses",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				return cli.LoadEnvFile(envFile)
			}
			return cli.LoadEnvFile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")

	rootCmd.AddCommand(
		newServeCommand(),
		newSummaryCommand(),
		newExportCommand(),
		newSheetsAuthCommand(),
		newEventsCommand(),
	)

	return rootCmd
}
