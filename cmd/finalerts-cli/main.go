// Command finalerts-cli manages budgets and bills in the SQLite store and
// prints the current alerts of any backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finalerts/internal/cli"
	"finalerts/internal/config"
	"finalerts/internal/log"
	"finalerts/internal/storage"
)

type app struct {
	cfg    *config.Config
	logger *log.Logger
	dbPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "finalerts-cli",
		Short: "Manage budgets and bills and inspect finance alerts",
		Long: `finalerts-cli writes budgets, transactions and recurring bills to the
SQLite database used by the sqlite backend, and prints the alerts the
configured backend produces right now.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.LoadEnvFile()
			a.cfg = config.Load()
			a.logger = cli.SetupLogger(log.ComponentCLI)
			if !cmd.Flags().Changed("db") {
				a.dbPath = a.cfg.SQLiteDBPath
			}
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default: SQLITE_DB_PATH)")

	root.AddCommand(newAlertsCmd(a), newBudgetCmd(a), newBillCmd(a), newTxCmd(a))
	return root
}

func (a *app) openRepo() (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.dbPath, err)
	}
	return repo, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
