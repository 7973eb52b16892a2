package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgeteer-dev/budgeteer/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "budgeteer",
		Short:   "Plain-text personal budget ledger with staged CSV imports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "budgeteer.yaml", "path to config file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newSessionsCommand())

	return rootCmd
}
