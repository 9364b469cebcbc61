// Package alerts derives user-facing notifications from budgets, the
// monthly summary and upcoming recurring bills, and tracks their per-session
// read and deleted state.
package alerts

import (
	"errors"
	"fmt"

	"finalerts/internal/core"
)

// Kind identifies what an alert is about.
type Kind string

const (
	KindBillDue         Kind = "bill_due"
	KindBillUrgent      Kind = "bill_urgent"
	KindBudgetExceeded  Kind = "budget_exceeded"
	KindBudgetWarning   Kind = "budget_warning"
	KindSpendingSummary Kind = "spending_summary"
)

// Severity is the color-coded urgency of an alert.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityOrange Severity = "orange"
	SeverityBlue   Severity = "blue"
)

// SpendingSummaryID is the id of the single monthly summary alert.
const SpendingSummaryID = "spending-summary"

// Time labels that are not a day count.
const (
	LabelToday    = "Today"
	LabelTomorrow = "Tomorrow"
	LabelOverdue  = "Overdue"
	LabelRecently = "Recently"
)

// Message holds the raw values an alert reports. Turning them into text is
// the job of a Renderer, so the same alert can be shown in any locale.
type Message struct {
	Category      string
	Amount        core.Money // bill amount
	Overage       core.Money // budget exceeded by, always positive
	Percent       int        // budget usage, rounded to a whole percent
	DaysUntilDue  int        // negative when overdue
	TotalIncome   core.Money
	TotalExpenses core.Money
}

// Alert is one synthesized notification.
type Alert struct {
	ID        string
	Kind      Kind
	Severity  Severity
	Title     string
	Message   Message
	TimeLabel string
	Read      bool
}

// BillAlertID returns the id of the alert for a bill.
func BillAlertID(billID int64) string {
	return fmt.Sprintf("bill-%d", billID)
}

// BudgetExceededID returns the id of the over-budget alert for a budget.
func BudgetExceededID(budgetID int64) string {
	return fmt.Sprintf("budget-over-%d", budgetID)
}

// BudgetWarningID returns the id of the threshold warning for a budget.
func BudgetWarningID(budgetID int64) string {
	return fmt.Sprintf("budget-warning-%d", budgetID)
}

// ErrDuplicateRecord reports a second record that maps to an alert id
// already emitted in the same synthesis.
var ErrDuplicateRecord = errors.New("duplicate record")

// MalformedRecordError describes an input record that was skipped.
type MalformedRecordError struct {
	Record string // "budget", "bill" or "summary"
	ID     int64
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Record == "summary" {
		return fmt.Sprintf("malformed summary: %v", e.Err)
	}
	return fmt.Sprintf("malformed %s %d: %v", e.Record, e.ID, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
