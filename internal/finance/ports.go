package finance

import (
	"context"

	"finalerts/internal/core"
)

// Ports for outbound adapters.
type (
	// BudgetLister returns the budgets of a month with their spent amount.
	BudgetLister interface {
		ListBudgets(ctx context.Context, year int, month int) ([]core.Budget, error)
	}

	// SummaryReader provides the income/expense totals of a month.
	SummaryReader interface {
		GetMonthlySummary(ctx context.Context, year int, month int) (core.MonthlySummary, error)
	}

	// BillLister returns recurring expenses due in [from, from+days].
	BillLister interface {
		ListUpcomingRecurring(ctx context.Context, from core.Date, days int) ([]core.UpcomingBill, error)
	}

	// Provider is everything the refresher reads.
	Provider interface {
		BudgetLister
		SummaryReader
		BillLister
	}
)
