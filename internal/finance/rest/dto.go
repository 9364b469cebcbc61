package rest

import (
	"strings"

	"github.com/shopspring/decimal"

	"finalerts/internal/core"
)

// budgetDTO mirrors the backend's budget response. Older deployments send
// "spent" instead of "spentAmount".
type budgetDTO struct {
	ID             int64            `json:"id"`
	Category       string           `json:"category"`
	Amount         *decimal.Decimal `json:"amount"`
	SpentAmount    *decimal.Decimal `json:"spentAmount"`
	Spent          *decimal.Decimal `json:"spent"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
}

func (w budgetDTO) toCore() core.Budget {
	b := core.Budget{
		ID:       w.ID,
		Category: strings.TrimSpace(w.Category),
		Amount:   money(w.Amount),
		Month:    w.Month,
		Year:     w.Year,
	}
	switch {
	case w.SpentAmount != nil:
		b.Spent = money(w.SpentAmount)
	case w.Spent != nil:
		b.Spent = money(w.Spent)
	}
	if w.AlertThreshold != nil {
		t := int(w.AlertThreshold.Round(0).IntPart())
		b.AlertThreshold = &t
	}
	return b
}

// transactionDTO mirrors the backend's transaction response. The date is
// "transactionDate" in current responses and "date" in older ones.
type transactionDTO struct {
	ID                 int64            `json:"id"`
	Amount             *decimal.Decimal `json:"amount"`
	Category           string           `json:"category"`
	Type               string           `json:"type"`
	TransactionDate    string           `json:"transactionDate"`
	Date               string           `json:"date"`
	Description        string           `json:"description"`
	IsRecurring        *bool            `json:"isRecurring"`
	RecurringFrequency string           `json:"recurringFrequency"`
	NextDueDate        string           `json:"nextDueDate"`
}

// toCore converts the row. The returned error concerns the transaction
// date only; every other field is filled in regardless.
func (w transactionDTO) toCore() (core.Transaction, error) {
	t := core.Transaction{
		ID:          w.ID,
		Type:        core.TransactionType(strings.ToUpper(strings.TrimSpace(w.Type))),
		Category:    strings.TrimSpace(w.Category),
		Description: w.Description,
		Amount:      money(w.Amount),
		Recurring:   w.IsRecurring != nil && *w.IsRecurring,
	}
	if every, err := core.ParseRepetition(w.RecurringFrequency); err == nil {
		t.Every = every
	}
	if due, err := core.ParseDate(w.NextDueDate); err == nil {
		t.NextDueDate = due
	}

	raw := w.TransactionDate
	if raw == "" {
		raw = w.Date
	}
	date, err := core.ParseDate(raw)
	if err != nil {
		return t, err
	}
	t.Date = date
	return t, nil
}

func money(d *decimal.Decimal) core.Money {
	if d == nil {
		return core.Money{}
	}
	return core.MoneyFromDecimal(*d)
}
