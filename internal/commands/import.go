package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/budgeteer-dev/budgeteer/internal/config"
	"github.com/budgeteer-dev/budgeteer/internal/gitops"
	"github.com/budgeteer-dev/budgeteer/internal/ingest"
	"github.com/budgeteer-dev/budgeteer/internal/ledger"
	"github.com/budgeteer-dev/budgeteer/internal/logger"
	"github.com/budgeteer-dev/budgeteer/internal/session"
)

func newImportCommand() *cobra.Command {
	var accountID string
	var dryRun bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Ingest bank CSV exports into the staging area",
		Long: `Parses bank CSV exports, normalizes and classifies each row, skips
duplicates against the account's existing transactions, and stages the
accepted rows under a new import session. Without file arguments the
ledger's import/ directory is scanned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runImport(cfg, accountID, args, dryRun, asJSON)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id to import into (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "analyze only; stage nothing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full import plan as JSON")

	return cmd
}

func runImport(cfg *config.Config, accountID string, files []string, dryRun, asJSON bool) error {
	log := logger.New()
	store := ledger.NewStore(cfg.Ledger.Dir)

	scanned := false
	if len(files) == 0 {
		infos, err := ingest.Scan(cfg.Ledger.Dir)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No CSV files found in import/")
			return nil
		}
		for _, info := range infos {
			files = append(files, info.Path)
		}
		scanned = true
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}

		st, err := store.Load()
		if err != nil {
			return err
		}
		existing := st.Ledger.Accounts[accountID].Transactions

		result, err := ingest.RunIngestion(ingest.AnalyzeParams{
			FileText:  string(data),
			AccountID: accountID,
			Existing:  existing,
			Consensus: ingest.ConsensusThresholds{
				MinOccurrences: cfg.Import.MinOccurrences,
				DominanceRatio: cfg.Import.DominanceRatio,
			},
			Stream: ingest.StreamThresholds{
				Lines: cfg.Import.StreamLineThreshold,
				Bytes: cfg.Import.StreamByteThreshold,
			},
			Logger: &log,
		}, nil)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", file, err)
		}
		plan := result.Plan

		if asJSON {
			out, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding plan: %w", err)
			}
			fmt.Println(string(out))
		} else {
			printPlanSummary(file, plan)
		}

		if dryRun {
			continue
		}

		settings := session.FromConfig(cfg.Import)
		next := st
		next.Ledger = result.Patch(next.Ledger)
		next = session.AddPendingSavings(next, accountID, plan.SavingsQueue)
		next = session.RecordHistory(next, plan.HistoryEntry(), settings)
		next = session.PruneHistory(next, plan.Session.ImportedAt, settings)
		if err := store.Save(next); err != nil {
			return err
		}

		if scanned {
			if err := ingest.MarkProcessed(cfg.Ledger.Dir, filepath.Base(file)); err != nil {
				return err
			}
		}

		if cfg.Git.AutoCommit && gitops.IsRepo(cfg.Ledger.Dir) {
			msg := gitops.ImportMessage(accountID, plan.Session.SessionID, plan.Stats.NewCount)
			hash, err := gitops.CommitAll(cfg.Ledger.Dir, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
			if err != nil {
				return fmt.Errorf("committing import: %w", err)
			}
			fmt.Printf("Committed %s\n", hash)
		}
	}
	return nil
}

func printPlanSummary(file string, plan ingest.ImportPlan) {
	s := plan.Stats
	fmt.Printf("%s: session %s\n", filepath.Base(file), plan.Session.SessionID)
	fmt.Printf("  staged %d new, skipped %d duplicates (%d existing, %d in-file)\n",
		s.NewCount, s.Dupes, s.DupesExisting, s.DupesIntraFile)
	if s.SavingsCount > 0 {
		fmt.Printf("  %d savings transactions queued for goal review\n", len(plan.SavingsQueue))
	}
	if n := len(plan.Errors); n > 0 {
		fmt.Printf("  %d rows reported errors\n", n)
	}
}

// loadConfig resolves the --config flag into a parsed config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if cfg.Ledger.Dir == "" {
		cfg.Ledger.Dir = filepath.Dir(path)
	}
	return cfg, nil
}
