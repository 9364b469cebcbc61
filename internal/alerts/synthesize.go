package alerts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finalerts/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Result is the outcome of one synthesis.
type Result struct {
	Alerts  []Alert
	Skipped []*MalformedRecordError
}

// Synthesize derives the alert list for the given records as of now.
//
// Output order is bills (input order), then budgets (input order), then the
// spending summary. Records that fail validation are skipped and reported in
// Result.Skipped; they never abort the batch. The function is pure: the same
// inputs and clock always yield the same list.
func Synthesize(budgets []core.Budget, summary core.MonthlySummary, bills []core.UpcomingBill, now time.Time) Result {
	var res Result
	seen := make(map[string]struct{}, len(bills)+len(budgets)+1)
	emit := func(a Alert, record string, id int64) {
		if _, dup := seen[a.ID]; dup {
			res.Skipped = append(res.Skipped, &MalformedRecordError{Record: record, ID: id, Err: fmt.Errorf("%w: alert %s", ErrDuplicateRecord, a.ID)})
			return
		}
		seen[a.ID] = struct{}{}
		res.Alerts = append(res.Alerts, a)
	}

	today := core.DateOf(now)
	for _, bill := range bills {
		if err := bill.Validate(); err != nil {
			res.Skipped = append(res.Skipped, &MalformedRecordError{Record: "bill", ID: bill.ID, Err: err})
			continue
		}
		emit(billAlert(bill, today), "bill", bill.ID)
	}

	for _, budget := range budgets {
		if err := budget.Validate(); err != nil {
			res.Skipped = append(res.Skipped, &MalformedRecordError{Record: "budget", ID: budget.ID, Err: err})
			continue
		}
		if a, ok := budgetAlert(budget); ok {
			emit(a, "budget", budget.ID)
		}
	}

	if err := summary.Validate(); err != nil {
		res.Skipped = append(res.Skipped, &MalformedRecordError{Record: "summary", Err: err})
	} else if summary.TotalExpenses.Cents > 0 {
		emit(summaryAlert(summary), "summary", 0)
	}

	return res
}

// billAlert builds the alert for one bill. Days are counted between
// calendar dates, so a bill due later today is 0 days away regardless of
// the time of day; this is the ceiling of the real-valued difference
// measured from the start of today.
func billAlert(bill core.UpcomingBill, today core.Date) Alert {
	days := today.DaysUntil(core.DateOf(bill.NextDueDate.Time))
	urgent := days <= 1

	a := Alert{
		ID:        BillAlertID(bill.ID),
		Kind:      KindBillDue,
		Severity:  SeverityOrange,
		Title:     "Upcoming Bill",
		TimeLabel: dueLabel(days),
		Message: Message{
			Category:     bill.Category,
			Amount:       bill.Amount,
			DaysUntilDue: days,
		},
	}
	if urgent {
		a.Kind = KindBillUrgent
		a.Severity = SeverityRed
		a.Title = "Bill Due Soon!"
	}
	return a
}

func dueLabel(days int) string {
	switch {
	case days < 0:
		return LabelOverdue
	case days == 0:
		return LabelToday
	case days == 1:
		return LabelTomorrow
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// budgetAlert returns the exceeded or warning alert for a budget, or false
// when spending is below the threshold. Amount is validated positive.
func budgetAlert(b core.Budget) (Alert, bool) {
	pct := b.Spent.Decimal().Mul(hundred).Div(b.Amount.Decimal())

	switch {
	case pct.GreaterThanOrEqual(hundred):
		return Alert{
			ID:        BudgetExceededID(b.ID),
			Kind:      KindBudgetExceeded,
			Severity:  SeverityRed,
			Title:     "Over Budget",
			TimeLabel: LabelRecently,
			Message: Message{
				Category: b.Category,
				Overage:  b.Amount.Sub(b.Spent).Abs(),
				Percent:  int(pct.Round(0).IntPart()),
			},
		}, true
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(b.Threshold()))):
		return Alert{
			ID:        BudgetWarningID(b.ID),
			Kind:      KindBudgetWarning,
			Severity:  SeverityOrange,
			Title:     "Budget Alert",
			TimeLabel: LabelRecently,
			Message: Message{
				Category: b.Category,
				Percent:  int(pct.Round(0).IntPart()),
			},
		}, true
	default:
		return Alert{}, false
	}
}

func summaryAlert(s core.MonthlySummary) Alert {
	return Alert{
		ID:        SpendingSummaryID,
		Kind:      KindSpendingSummary,
		Severity:  SeverityBlue,
		Title:     "Monthly Summary",
		TimeLabel: LabelToday,
		Message: Message{
			TotalIncome:   s.TotalIncome,
			TotalExpenses: s.TotalExpenses,
		},
	}
}
