package alerts

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finalerts/internal/core"
)

var testNow = time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

func eur(units int64) core.Money {
	return core.Money{Cents: units * 100}
}

func intPtr(v int) *int {
	return &v
}

func bill(id int64, daysFromToday int) core.UpcomingBill {
	return core.UpcomingBill{
		ID:          id,
		Category:    "Rent",
		Amount:      eur(500),
		NextDueDate: core.DateOf(testNow).AddDays(daysFromToday),
	}
}

func budget(id int64, amount, spent int64, threshold *int) core.Budget {
	return core.Budget{
		ID:             id,
		Category:       "Food",
		Amount:         eur(amount),
		Spent:          eur(spent),
		AlertThreshold: threshold,
		Month:          6,
		Year:           2025,
	}
}

func TestBillAlerts(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		kind     Kind
		severity Severity
		title    string
		label    string
	}{
		{"due today", 0, KindBillUrgent, SeverityRed, "Bill Due Soon!", "Today"},
		{"due tomorrow", 1, KindBillUrgent, SeverityRed, "Bill Due Soon!", "Tomorrow"},
		{"due in two days", 2, KindBillDue, SeverityOrange, "Upcoming Bill", "2 days"},
		{"due in five days", 5, KindBillDue, SeverityOrange, "Upcoming Bill", "5 days"},
		{"overdue", -3, KindBillUrgent, SeverityRed, "Bill Due Soon!", "Overdue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Synthesize(nil, core.MonthlySummary{}, []core.UpcomingBill{bill(7, tt.days)}, testNow)
			require.Empty(t, res.Skipped)
			require.Len(t, res.Alerts, 1)

			a := res.Alerts[0]
			assert.Equal(t, "bill-7", a.ID)
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, tt.severity, a.Severity)
			assert.Equal(t, tt.title, a.Title)
			assert.Equal(t, tt.label, a.TimeLabel)
			assert.Equal(t, tt.days, a.Message.DaysUntilDue)
			assert.Equal(t, eur(500), a.Message.Amount)
			assert.False(t, a.Read)
		})
	}
}

func TestBillDaysIgnoreTimeOfDay(t *testing.T) {
	// A bill due tomorrow is "Tomorrow" both right after midnight and late at night.
	due := core.NewDate(2025, 6, 11)
	for _, now := range []time.Time{
		time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC),
		time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC),
	} {
		res := Synthesize(nil, core.MonthlySummary{}, []core.UpcomingBill{{ID: 1, Category: "Gas", Amount: eur(10), NextDueDate: due}}, now)
		require.Len(t, res.Alerts, 1)
		assert.Equal(t, LabelTomorrow, res.Alerts[0].TimeLabel, "now=%s", now)
	}
}

func TestBillDaysUseLocalCalendarDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2025-06-10 20:00 UTC is already 2025-06-11 in Tokyo.
	now := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC).In(tokyo)
	res := Synthesize(nil, core.MonthlySummary{}, []core.UpcomingBill{{ID: 1, Category: "Gas", Amount: eur(10), NextDueDate: core.NewDate(2025, 6, 11)}}, now)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, LabelToday, res.Alerts[0].TimeLabel)
}

func TestScenarioA_BudgetExceeded(t *testing.T) {
	res := Synthesize([]core.Budget{budget(3, 1000, 1200, intPtr(80))}, core.MonthlySummary{}, nil, testNow)
	require.Len(t, res.Alerts, 1)

	a := res.Alerts[0]
	assert.Equal(t, "budget-over-3", a.ID)
	assert.Equal(t, KindBudgetExceeded, a.Kind)
	assert.Equal(t, SeverityRed, a.Severity)
	assert.Equal(t, eur(200), a.Message.Overage)
}

func TestScenarioB_BudgetWarning(t *testing.T) {
	res := Synthesize([]core.Budget{budget(4, 1000, 850, intPtr(80))}, core.MonthlySummary{}, nil, testNow)
	require.Len(t, res.Alerts, 1)

	a := res.Alerts[0]
	assert.Equal(t, "budget-warning-4", a.ID)
	assert.Equal(t, KindBudgetWarning, a.Kind)
	assert.Equal(t, SeverityOrange, a.Severity)
	assert.Equal(t, 85, a.Message.Percent)
}

func TestScenarioCD_Bills(t *testing.T) {
	res := Synthesize(nil, core.MonthlySummary{}, []core.UpcomingBill{bill(1, 0), bill(2, 5)}, testNow)
	require.Len(t, res.Alerts, 2)
	assert.Equal(t, KindBillUrgent, res.Alerts[0].Kind)
	assert.Equal(t, "Today", res.Alerts[0].TimeLabel)
	assert.Equal(t, KindBillDue, res.Alerts[1].Kind)
	assert.Equal(t, "5 days", res.Alerts[1].TimeLabel)
}

func TestScenarioE_SpendingSummary(t *testing.T) {
	res := Synthesize(nil, core.MonthlySummary{TotalIncome: eur(5000), TotalExpenses: eur(3000)}, nil, testNow)
	require.Len(t, res.Alerts, 1)
	a := res.Alerts[0]
	assert.Equal(t, SpendingSummaryID, a.ID)
	assert.Equal(t, KindSpendingSummary, a.Kind)
	assert.Equal(t, SeverityBlue, a.Severity)
	assert.Equal(t, eur(5000), a.Message.TotalIncome)
	assert.Equal(t, eur(3000), a.Message.TotalExpenses)

	res = Synthesize(nil, core.MonthlySummary{TotalIncome: eur(5000)}, nil, testNow)
	assert.Empty(t, res.Alerts)
}

func TestScenarioF_Ordering(t *testing.T) {
	budgets := []core.Budget{
		budget(10, 1000, 1200, nil), // exceeded
		budget(11, 1000, 900, nil),  // warning
	}
	res := Synthesize(budgets, core.MonthlySummary{TotalIncome: eur(5000), TotalExpenses: eur(3000)}, []core.UpcomingBill{bill(5, 3)}, testNow)

	ids := make([]string, 0, len(res.Alerts))
	for _, a := range res.Alerts {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"bill-5", "budget-over-10", "budget-warning-11", "spending-summary"}, ids)
}

func TestBudgetBelowThresholdEmitsNothing(t *testing.T) {
	res := Synthesize([]core.Budget{budget(1, 1000, 500, nil)}, core.MonthlySummary{}, nil, testNow)
	assert.Empty(t, res.Alerts)
	assert.Empty(t, res.Skipped)
}

func TestBudgetDefaultThresholdIsEighty(t *testing.T) {
	res := Synthesize([]core.Budget{budget(1, 1000, 799, nil), budget(2, 1000, 800, nil)}, core.MonthlySummary{}, nil, testNow)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "budget-warning-2", res.Alerts[0].ID)
}

func TestBudgetTierProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		amount := rng.Int63n(1_000_000) + 1
		spent := rng.Int63n(2_000_000)
		threshold := rng.Intn(101)

		b := core.Budget{
			ID:             int64(i),
			Category:       "Cat",
			Amount:         core.Money{Cents: amount},
			Spent:          core.Money{Cents: spent},
			AlertThreshold: intPtr(threshold),
			Month:          1,
			Year:           2025,
		}
		res := Synthesize([]core.Budget{b}, core.MonthlySummary{}, nil, testNow)
		require.Empty(t, res.Skipped)
		require.LessOrEqual(t, len(res.Alerts), 1, "at most one alert per budget")

		desc := fmt.Sprintf("amount=%d spent=%d threshold=%d", amount, spent, threshold)
		switch {
		case spent >= amount:
			require.Len(t, res.Alerts, 1, desc)
			assert.Equal(t, KindBudgetExceeded, res.Alerts[0].Kind, desc)
		case spent*100 >= int64(threshold)*amount:
			require.Len(t, res.Alerts, 1, desc)
			assert.Equal(t, KindBudgetWarning, res.Alerts[0].Kind, desc)
		default:
			assert.Empty(t, res.Alerts, desc)
		}
	}
}

func TestSynthesizeIsIdempotent(t *testing.T) {
	budgets := []core.Budget{budget(1, 1000, 1500, nil), budget(2, 1000, 950, nil)}
	bills := []core.UpcomingBill{bill(1, 0), bill(2, 2)}
	summary := core.MonthlySummary{TotalIncome: eur(1), TotalExpenses: eur(2)}

	first := Synthesize(budgets, summary, bills, testNow)
	second := Synthesize(budgets, summary, bills, testNow)
	assert.Equal(t, first, second)
}

func TestMalformedRecordsAreSkipped(t *testing.T) {
	budgets := []core.Budget{
		budget(1, 0, 100, nil), // zero amount
		budget(2, 1000, 1200, nil),
	}
	bills := []core.UpcomingBill{
		{ID: 9, Category: "Rent", Amount: eur(10)}, // no due date
		bill(10, 1),
	}
	res := Synthesize(budgets, core.MonthlySummary{}, bills, testNow)

	require.Len(t, res.Alerts, 2)
	assert.Equal(t, "bill-10", res.Alerts[0].ID)
	assert.Equal(t, "budget-over-2", res.Alerts[1].ID)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "bill", res.Skipped[0].Record)
	assert.Equal(t, int64(9), res.Skipped[0].ID)
	assert.True(t, errors.Is(res.Skipped[0], core.ErrInvalidDueDate))
	assert.Equal(t, "budget", res.Skipped[1].Record)
	assert.True(t, errors.Is(res.Skipped[1], core.ErrInvalidAmount))
}

func TestDuplicateIDsAreDropped(t *testing.T) {
	res := Synthesize(nil, core.MonthlySummary{}, []core.UpcomingBill{bill(1, 2), bill(1, 4)}, testNow)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "2 days", res.Alerts[0].TimeLabel)
	require.Len(t, res.Skipped, 1)
	assert.ErrorIs(t, res.Skipped[0], ErrDuplicateRecord)
}

func TestNegativeSummaryIsSkipped(t *testing.T) {
	res := Synthesize(nil, core.MonthlySummary{TotalExpenses: core.Money{Cents: -1}}, nil, testNow)
	assert.Empty(t, res.Alerts)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "summary", res.Skipped[0].Record)
}
