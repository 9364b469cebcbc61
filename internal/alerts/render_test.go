package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finalerts/internal/core"
)

func TestRenderMessages(t *testing.T) {
	r, err := NewRendererFromCodes("en", "eur")
	require.NoError(t, err)

	tests := []struct {
		name  string
		alert Alert
		want  string
	}{
		{
			name:  "bill today",
			alert: Alert{Kind: KindBillUrgent, Message: Message{Category: "Rent", Amount: eur(500), DaysUntilDue: 0}},
			want:  "Rent payment of €500.00 is due today",
		},
		{
			name:  "bill tomorrow",
			alert: Alert{Kind: KindBillUrgent, Message: Message{Category: "Rent", Amount: eur(500), DaysUntilDue: 1}},
			want:  "Rent payment of €500.00 is due tomorrow",
		},
		{
			name:  "bill later",
			alert: Alert{Kind: KindBillDue, Message: Message{Category: "Gym", Amount: core.Money{Cents: 4999}, DaysUntilDue: 5}},
			want:  "Gym payment of €49.99 is due in 5 days",
		},
		{
			name:  "bill overdue",
			alert: Alert{Kind: KindBillUrgent, Message: Message{Category: "Gym", Amount: eur(50), DaysUntilDue: -4}},
			want:  "Gym payment of €50.00 was due 4 days ago",
		},
		{
			name:  "budget exceeded",
			alert: Alert{Kind: KindBudgetExceeded, Message: Message{Category: "Food", Overage: eur(200)}},
			want:  "Food expenses exceeded your budget by €200.00",
		},
		{
			name:  "budget warning",
			alert: Alert{Kind: KindBudgetWarning, Message: Message{Category: "Food", Percent: 85}},
			want:  "You've spent 85% of your Food budget this month",
		},
		{
			name:  "summary",
			alert: Alert{Kind: KindSpendingSummary, Message: Message{TotalIncome: eur(500), TotalExpenses: eur(300)}},
			want:  "Total expenses: €300.00. Income: €500.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.alert))
		})
	}
}

func TestRendererCurrencySymbol(t *testing.T) {
	r, err := NewRendererFromCodes("en-US", "USD")
	require.NoError(t, err)
	assert.Equal(t, "$12.50", r.Money(core.Money{Cents: 1250}))
	assert.Equal(t, "-$3.00", r.Money(core.Money{Cents: -300}))
	assert.Equal(t, "$1,234,567.05", r.Money(core.Money{Cents: 123456705}))

	gbp, err := NewRendererFromCodes("en", "GBP")
	require.NoError(t, err)
	assert.Equal(t, "£0.99", gbp.Money(core.Money{Cents: 99}))

	chf, err := NewRendererFromCodes("en", "CHF")
	require.NoError(t, err)
	assert.Equal(t, "CHF 7.00", chf.Money(core.Money{Cents: 700}))
}

func TestRendererKeepsCentsOfLargeAmounts(t *testing.T) {
	assert.Equal(t, "€90,071,992,547,409.93", DefaultRenderer.Money(core.Money{Cents: 9007199254740993}))
	assert.Equal(t, "-€90,071,992,547,409.93", DefaultRenderer.Money(core.Money{Cents: -9007199254740993}))
}

func TestRendererRejectsBadCodes(t *testing.T) {
	_, err := NewRendererFromCodes("en", "XX")
	assert.Error(t, err)
	_, err = NewRendererFromCodes("!!", "EUR")
	assert.Error(t, err)
}

func TestDetails(t *testing.T) {
	bill := Details(Alert{Kind: KindBillDue, Message: Message{Category: "Rent", Amount: core.Money{Cents: 50050}, DaysUntilDue: 3}})
	assert.Equal(t, map[string]any{"category": "Rent", "amount": "500.50", "days_until_due": 3}, bill)

	summary := Details(Alert{Kind: KindSpendingSummary, Message: Message{TotalIncome: core.Money{Cents: 100}, TotalExpenses: core.Money{Cents: 2}}})
	assert.Equal(t, "1.00", summary["total_income"])
	assert.Equal(t, "0.02", summary["total_expenses"])

	assert.Nil(t, Details(Alert{Kind: "unknown"}))
}
