package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/budgeteer-dev/budgeteer/internal/config"
	"github.com/budgeteer-dev/budgeteer/internal/gitops"
	"github.com/budgeteer-dev/budgeteer/internal/ledger"
)

func newInitCommand() *cobra.Command {
	var git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new budget ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(absDir, git)
		},
	}

	cmd.Flags().BoolVar(&git, "git", true, "initialize a git repository and commit the skeleton")

	return cmd
}

func runInit(dir string, git bool) error {
	store := ledger.NewStore(dir)
	if err := store.Init(); err != nil {
		return fmt.Errorf("initializing ledger: %w", err)
	}

	cfg := config.Default(dir)
	cfg.Git.AutoCommit = git
	if err := config.Save(filepath.Join(dir, "budgeteer.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if git && !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
		hash, err := gitops.CommitAll(dir, "init: new budget ledger", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
		fmt.Printf("Initialized budget ledger at %s (%s)\n", dir, hash)
		return nil
	}

	fmt.Printf("Initialized budget ledger at %s\n", dir)
	return nil
}
