package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	late := time.Date(2025, 3, 30, 23, 59, 0, 0, rome)
	if got := DateOf(late); !got.Equal(NewDate(2025, 3, 30).Time) {
		t.Fatalf("DateOf = %v, want 2025-03-30", got)
	}
	// DST change in Rome on 2025-03-30 must not produce fractional days.
	if d := DateOf(late).DaysUntil(NewDate(2025, 3, 31)); d != 1 {
		t.Fatalf("DaysUntil across DST = %d, want 1", d)
	}
}

func TestDaysUntil(t *testing.T) {
	today := NewDate(2025, 1, 15)
	cases := map[Date]int{
		NewDate(2025, 1, 15): 0,
		NewDate(2025, 1, 16): 1,
		NewDate(2025, 1, 20): 5,
		NewDate(2025, 1, 13): -2,
		NewDate(2025, 2, 15): 31,
	}
	for d, want := range cases {
		if got := today.DaysUntil(d); got != want {
			t.Errorf("DaysUntil(%s) = %d, want %d", d, got, want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestBudgetValidate(t *testing.T) {
	ninety := 90
	tooHigh := 120
	good := Budget{ID: 1, Category: "Food", Amount: Money{Cents: 100000}, Month: 1, Year: 2025}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if good.Threshold() != DefaultAlertThreshold {
		t.Fatalf("default threshold = %d", good.Threshold())
	}
	withThreshold := good
	withThreshold.AlertThreshold = &ninety
	if withThreshold.Threshold() != 90 {
		t.Fatalf("threshold = %d, want 90", withThreshold.Threshold())
	}

	bads := []struct {
		b    Budget
		want error
	}{
		{Budget{Category: "", Amount: Money{Cents: 1}, Month: 1}, ErrEmptyCategory},
		{Budget{Category: "a", Amount: Money{Cents: 0}, Month: 1}, ErrInvalidAmount},
		{Budget{Category: "a", Amount: Money{Cents: 1}, Spent: Money{Cents: -1}, Month: 1}, ErrNegativeSpent},
		{Budget{Category: "a", Amount: Money{Cents: 1}, AlertThreshold: &tooHigh, Month: 1}, ErrInvalidThreshold},
		{Budget{Category: "a", Amount: Money{Cents: 1}, Month: 13}, ErrInvalidMonth},
	}
	for i, tc := range bads {
		if err := tc.b.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestUpcomingBillValidate(t *testing.T) {
	good := UpcomingBill{ID: 1, Category: "Rent", Amount: Money{Cents: 50000}, NextDueDate: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	noDate := good
	noDate.NextDueDate = Date{}
	if err := noDate.Validate(); !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Category: "Rent",
		Amount:   Money{Cents: 100},
		Date:     NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	recurring := good
	recurring.Recurring = true
	recurring.Every = Monthly
	recurring.NextDueDate = NewDate(2025, 2, 1)
	if err := recurring.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "TRANSFER", Category: "c", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)},
		{Type: Income, Category: "", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)},
		{Type: Income, Category: "c", Amount: Money{Cents: 0}, Date: NewDate(2025, 1, 1)},
		{Type: Income, Category: "c", Amount: Money{Cents: 1}},
		{Type: Expense, Category: "c", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Recurring: true, Every: "hourly", NextDueDate: NewDate(2025, 1, 2)},
		{Type: Expense, Category: "c", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Recurring: true, Every: Weekly},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Type: Income, Amount: Money{Cents: 500000}, Date: NewDate(2025, 3, 1)},
		{Type: Expense, Amount: Money{Cents: 120000}, Date: NewDate(2025, 3, 2)},
		{Type: Expense, Amount: Money{Cents: 30000}, Date: NewDate(2025, 3, 28)},
		{Type: Expense, Amount: Money{Cents: 99999}, Date: NewDate(2025, 4, 1)}, // other month
	}
	s := Summarize(2025, 3, txs)
	if s.TotalIncome.Cents != 500000 || s.TotalExpenses.Cents != 150000 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Balance().Cents != 350000 {
		t.Fatalf("balance = %d", s.Balance().Cents)
	}
}
