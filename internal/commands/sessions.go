package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/budgeteer-dev/budgeteer/internal/gitops"
	"github.com/budgeteer-dev/budgeteer/internal/ledger"
	"github.com/budgeteer-dev/budgeteer/internal/session"
)

func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage staged import sessions",
	}
	cmd.AddCommand(newSessionsListCommand())
	cmd.AddCommand(newSessionsApplyCommand())
	cmd.AddCommand(newSessionsUndoCommand())
	cmd.AddCommand(newSessionsExpireCommand())
	return cmd
}

func newSessionsListCommand() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions with staged transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store := ledger.NewStore(cfg.Ledger.Dir)
			st, err := store.Load()
			if err != nil {
				return err
			}

			summaries := session.StagedSessionSummaries(st, accountID, time.Now(), session.FromConfig(cfg.Import))
			if len(summaries) == 0 {
				fmt.Println("No staged sessions")
				return nil
			}
			for _, s := range summaries {
				fmt.Printf("%s  %-15s  staged=%d/%d  imported=%s\n",
					s.SessionID, s.Status, s.Count, s.NewCount,
					s.ImportedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newSessionsApplyCommand() *cobra.Command {
	var accountID, sessionID, monthsFlag string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a session's staged transactions to the budget",
		Long: `Flips staged transactions of one session to budget-applied, scoped to
the given months. Rows from other sessions in the same months, and rows
of this session in other months, stay staged. Pending savings entries
in scope move to the goal review queue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			months := splitMonths(monthsFlag)
			if len(months) == 0 {
				return fmt.Errorf("at least one month required (e.g. --months 2026-02)")
			}

			store := ledger.NewStore(cfg.Ledger.Dir)
			_, err = store.Update(func(st session.State) session.State {
				st = session.MarkApplied(st, accountID, sessionID, months)
				return session.ProcessPendingSavings(st, accountID, sessionID, months)
			})
			if err != nil {
				return err
			}

			if cfg.Git.AutoCommit && gitops.IsRepo(cfg.Ledger.Dir) {
				msg := fmt.Sprintf("apply session %s for %s", sessionID, strings.Join(months, ", "))
				if _, err := gitops.CommitAll(cfg.Ledger.Dir, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
					return fmt.Errorf("committing apply: %w", err)
				}
			}

			fmt.Printf("Applied session %s for %s\n", sessionID, strings.Join(months, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&sessionID, "session", "", "import session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&monthsFlag, "months", "", "comma-separated YYYY-MM months (required)")
	_ = cmd.MarkFlagRequired("months")
	return cmd
}

func newSessionsUndoCommand() *cobra.Command {
	var accountID, sessionID string

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo a recent import session",
		Long: `Removes the session's still-staged transactions and drops its pending
savings entries. Allowed only within the undo window and only once per
session; transactions already applied to the budget are not touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			now := time.Now()
			settings := session.FromConfig(cfg.Import)
			store := ledger.NewStore(cfg.Ledger.Dir)

			st, err := store.Load()
			if err != nil {
				return err
			}
			runtime, ok := session.RuntimeStatus(st, accountID, sessionID, now, settings)
			if !ok {
				return fmt.Errorf("unknown session %s", sessionID)
			}
			if !runtime.CanUndo {
				return fmt.Errorf("session %s cannot be undone (status %s)", sessionID, runtime.Status)
			}

			next := session.Undo(st, accountID, sessionID, now, settings)
			if err := store.Save(next); err != nil {
				return err
			}

			if cfg.Git.AutoCommit && gitops.IsRepo(cfg.Ledger.Dir) {
				msg := fmt.Sprintf("undo session %s", sessionID)
				if _, err := gitops.CommitAll(cfg.Ledger.Dir, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
					return fmt.Errorf("committing undo: %w", err)
				}
			}

			fmt.Printf("Undid session %s (removed %d staged transactions)\n", sessionID, runtime.StagedNow)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&sessionID, "session", "", "import session id (required)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func newSessionsExpireCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Auto-apply staged sessions past the expiry age",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			now := time.Now()
			settings := session.FromConfig(cfg.Import)
			store := ledger.NewStore(cfg.Ledger.Dir)

			_, err = store.Update(func(st session.State) session.State {
				st = session.ExpireStaged(st, now, settings)
				return session.PruneHistory(st, now, settings)
			})
			if err != nil {
				return err
			}
			fmt.Println("Expired stale staged sessions")
			return nil
		},
	}
	return cmd
}

func splitMonths(flag string) []string {
	var months []string
	for _, m := range strings.Split(flag, ",") {
		if m = strings.TrimSpace(m); m != "" {
			months = append(months, m)
		}
	}
	return months
}
