package core

import "sort"

// DefaultBillWindowDays is how far ahead upcoming bills are listed.
const DefaultBillWindowDays = 3

// UpcomingBills returns the recurring expenses whose next due date falls in
// [from, from+days], ordered by due date then id.
func UpcomingBills(txs []Transaction, from Date, days int) []UpcomingBill {
	until := from.AddDays(days)
	var out []UpcomingBill
	for _, t := range txs {
		if !t.Recurring || t.Type != Expense || t.NextDueDate.IsEmpty() {
			continue
		}
		if t.NextDueDate.Before(from.Time) || t.NextDueDate.After(until.Time) {
			continue
		}
		out = append(out, UpcomingBill{
			ID:          t.ID,
			Category:    t.Category,
			Amount:      t.Amount,
			NextDueDate: t.NextDueDate,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].NextDueDate.Equal(out[j].NextDueDate.Time) {
			return out[i].NextDueDate.Before(out[j].NextDueDate.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SpentByCategory totals the expenses of one month per category.
func SpentByCategory(year, month int, txs []Transaction) map[string]Money {
	out := make(map[string]Money)
	for _, t := range txs {
		if t.Type != Expense || t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// ApplySpent sets each budget's spent amount from the month's expenses.
func ApplySpent(budgets []Budget, txs []Transaction) []Budget {
	cache := make(map[[2]int]map[string]Money)
	out := make([]Budget, len(budgets))
	for i, b := range budgets {
		key := [2]int{b.Year, b.Month}
		spent, ok := cache[key]
		if !ok {
			spent = SpentByCategory(b.Year, b.Month, txs)
			cache[key] = spent
		}
		b.Spent = spent[b.Category]
		out[i] = b
	}
	return out
}
