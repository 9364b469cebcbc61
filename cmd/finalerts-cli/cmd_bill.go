package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"finalerts/internal/core"
)

func newBillCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Manage recurring bills",
	}
	cmd.AddCommand(newBillAddCmd(a), newBillPaidCmd(a))
	return cmd
}

func newBillAddCmd(a *app) *cobra.Command {
	var (
		category    string
		description string
		amount      string
		every       string
		start       string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a recurring expense",
		Long: `Create a recurring expense. Without --due the first due date is one
period after --date.

Examples:
  finalerts-cli bill add --category Rent --amount 500 --every monthly --date 2025-06-01
  finalerts-cli bill add --category Gym --amount 30 --every monthly --due 2025-06-12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			money, err := parseAmount(amount)
			if err != nil {
				return err
			}
			freq, err := core.ParseRepetition(every)
			if err != nil {
				return err
			}
			date, err := parseDateFlag(start)
			if err != nil {
				return err
			}
			t := core.Transaction{
				Type:        core.Expense,
				Category:    category,
				Description: description,
				Amount:      money,
				Date:        date,
				Recurring:   true,
				Every:       freq,
			}
			if due != "" {
				if t.NextDueDate, err = core.ParseDate(due); err != nil {
					return fmt.Errorf("invalid --due: %w", err)
				}
			}

			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			id, err := repo.CreateTransaction(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created bill %d: %s %s %s\n", id, category, money.Decimal().StringFixed(2), freq)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Bill category")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount per occurrence")
	cmd.Flags().StringVar(&every, "every", "monthly", "Frequency: daily, weekly, monthly or yearly")
	cmd.Flags().StringVar(&start, "date", "", "First occurrence, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&due, "due", "", "Next due date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newBillPaidCmd(a *app) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "paid ID",
		Short: "Record a bill payment and advance its due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid bill id %q", args[0])
			}
			paidOn, err := parseDateFlag(on)
			if err != nil {
				return err
			}
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			next, err := repo.MarkBillPaid(cmd.Context(), id, paidOn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bill %d paid on %s, next due %s\n", id, paidOn, next)
			return nil
		},
	}
	cmd.Flags().StringVar(&on, "on", "", "Payment date, YYYY-MM-DD (default: today)")
	return cmd
}

func newTxCmd(a *app) *cobra.Command {
	var (
		kind        string
		category    string
		description string
		amount      string
		date        string
	)

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a one-off income or expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			money, err := parseAmount(amount)
			if err != nil {
				return err
			}
			d, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			t := core.Transaction{
				Type:        core.TransactionType(strings.ToUpper(strings.TrimSpace(kind))),
				Category:    category,
				Description: description,
				Amount:      money,
				Date:        d,
			}

			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			id, err := repo.CreateTransaction(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %d: %s %s on %s\n", strings.ToLower(string(t.Type)), id, category, money.Decimal().StringFixed(2), d)
			return nil
		},
	}
	add.Flags().StringVar(&kind, "type", "expense", "income or expense")
	add.Flags().StringVar(&category, "category", "", "Category")
	add.Flags().StringVar(&description, "description", "", "Free-form description")
	add.Flags().StringVar(&amount, "amount", "", "Amount")
	add.Flags().StringVar(&date, "date", "", "Transaction date, YYYY-MM-DD (default: today)")
	_ = add.MarkFlagRequired("category")
	_ = add.MarkFlagRequired("amount")

	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record income and expense transactions",
	}
	cmd.AddCommand(add)
	return cmd
}

// parseAmount accepts a positive decimal with a dot or comma separator.
func parseAmount(s string) (core.Money, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil || !d.IsPositive() {
		return core.Money{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return core.MoneyFromDecimal(d), nil
}

func parseDateFlag(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.DateOf(time.Now()), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}
