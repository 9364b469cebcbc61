package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"finalerts/internal/amqp"
	"finalerts/internal/backend"
	"finalerts/internal/cli"
	"finalerts/internal/config"
	"finalerts/internal/log"
)

func newAlertsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Print the alerts the backend produces now",
		Long: `Refresh budgets, the monthly summary and upcoming bills from the
configured backend and print the synthesized alerts. Passing --db forces
the sqlite backend on that file.

Examples:
  finalerts-cli alerts
  finalerts-cli alerts --db ./data/finalerts.db --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if cmd.Flags().Changed("db") {
				cfg.DataBackend = config.BackendSQLite
				cfg.SQLiteDBPath = a.dbPath
			}

			bcfg, err := backend.FromAppConfig(&cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			res, err := backend.NewFactory(a.logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, bcfg)
			if err != nil {
				return err
			}
			defer res.Close()

			list, err := cli.InitRefresher(a.logger, &cfg, res, nil).Refresh(ctx)
			if err != nil {
				return err
			}
			renderer := cli.InitRenderer(a.logger, &cfg)

			out := cmd.OutOrStdout()
			if asJSON {
				now := time.Now()
				events := make([]*amqp.AlertEvent, 0, len(list))
				for _, al := range list {
					events = append(events, amqp.NewAlertEvent(al, renderer, now))
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(events)
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No alerts.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SEVERITY\tWHEN\tTITLE\tMESSAGE")
			for _, al := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", al.Severity, al.TimeLabel, al.Title, renderer.Render(al))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print alert events as JSON")
	return cmd
}
