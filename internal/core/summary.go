package core

// MonthlySummary is the income/expense aggregate for one period.
type MonthlySummary struct {
	Year          int
	Month         int // 1-12
	TotalIncome   Money
	TotalExpenses Money
}

// Balance returns income minus expenses; it may be negative.
func (s MonthlySummary) Balance() Money {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

func (s MonthlySummary) Validate() error {
	if s.TotalIncome.Cents < 0 || s.TotalExpenses.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Summarize folds transactions of the given year and month into a summary.
func Summarize(year, month int, txs []Transaction) MonthlySummary {
	s := MonthlySummary{Year: year, Month: month}
	for _, t := range txs {
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}
	return s
}
