package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"finalerts/internal/core"
)

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly category budgets",
	}
	cmd.AddCommand(newBudgetAddCmd(a), newBudgetDeleteCmd(a))
	return cmd
}

func newBudgetAddCmd(a *app) *cobra.Command {
	var (
		category  string
		amount    string
		month     int
		year      int
		threshold int
	)
	now := time.Now()

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a budget for one category and month",
		Long: `Create a budget. Spending is derived from expense transactions of the
same category and month.

Examples:
  finalerts-cli budget add --category Food --amount 300
  finalerts-cli budget add --category Rent --amount 1200 --month 7 --threshold 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			money, err := parseAmount(amount)
			if err != nil {
				return err
			}
			b := core.Budget{
				Category: category,
				Amount:   money,
				Month:    month,
				Year:     year,
			}
			if cmd.Flags().Changed("threshold") {
				b.AlertThreshold = &threshold
			}

			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			id, err := repo.CreateBudget(cmd.Context(), b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created budget %d: %s %s for %04d-%02d\n", id, category, money.Decimal().StringFixed(2), year, month)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Budget category")
	cmd.Flags().StringVar(&amount, "amount", "", "Monthly cap, e.g. 300 or 149.90")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Month (1-12)")
	cmd.Flags().IntVar(&year, "year", now.Year(), "Year")
	cmd.Flags().IntVar(&threshold, "threshold", core.DefaultAlertThreshold, "Warning threshold in percent")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newBudgetDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid budget id %q", args[0])
			}
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.DeleteBudget(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted budget %d\n", id)
			return nil
		},
	}
}
