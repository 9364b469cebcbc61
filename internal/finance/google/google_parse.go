package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finalerts/internal/core"
)

// rowError describes a data row that could not be read.
type rowError struct {
	Row int // 1-based, as shown in the spreadsheet
	Err error
}

// parseBudgets converts the budgets tab into budgets of the given month.
// Headers: ID, Category, Amount, Threshold, Month, Year. Month and Year may
// be blank for a budget that applies every month. An unreadable amount is
// kept as zero so the budget is reported as malformed downstream.
func parseBudgets(values [][]interface{}, year, month int) []core.Budget {
	if len(values) == 0 {
		return nil
	}
	h := toStrings(values[0])
	colID, colCat, colAmount := indexOf(h, "ID"), indexOf(h, "Category"), indexOf(h, "Amount")
	colThreshold, colMonth, colYear := indexOf(h, "Threshold"), indexOf(h, "Month"), indexOf(h, "Year")

	var out []core.Budget
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id, err := strconv.ParseInt(safeGet(row, colID), 10, 64)
		if err != nil {
			continue
		}
		b := core.Budget{ID: id, Category: safeGet(row, colCat), Month: month, Year: year}
		if amount, ok := parseAmount(safeGet(row, colAmount)); ok {
			b.Amount = amount
		}
		if v := safeGet(row, colThreshold); v != "" {
			t, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(v, "%")))
			if err != nil {
				// out of range, so the budget is reported as malformed
				t = -1
			}
			b.AlertThreshold = &t
		}
		if v := safeGet(row, colMonth); v != "" {
			if m, err := strconv.Atoi(v); err != nil || m != month {
				continue
			}
		}
		if v := safeGet(row, colYear); v != "" {
			if y, err := strconv.Atoi(v); err != nil || y != year {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// parseBills converts the bills tab. Headers: ID, Category, Amount, Due.
func parseBills(values [][]interface{}) []core.UpcomingBill {
	if len(values) == 0 {
		return nil
	}
	h := toStrings(values[0])
	colID, colCat, colAmount, colDue := indexOf(h, "ID"), indexOf(h, "Category"), indexOf(h, "Amount"), indexOf(h, "Due")

	var out []core.UpcomingBill
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id, err := strconv.ParseInt(safeGet(row, colID), 10, 64)
		if err != nil {
			continue
		}
		b := core.UpcomingBill{ID: id, Category: safeGet(row, colCat)}
		if amount, ok := parseAmount(safeGet(row, colAmount)); ok {
			b.Amount = amount
		}
		if due, err := core.ParseDate(safeGet(row, colDue)); err == nil {
			b.NextDueDate = due
		}
		out = append(out, b)
	}
	return out
}

// filterWindow keeps bills due in [from, from+days] and bills with no
// readable due date.
func filterWindow(bills []core.UpcomingBill, from core.Date, days int) []core.UpcomingBill {
	until := from.AddDays(days)
	out := make([]core.UpcomingBill, 0, len(bills))
	for _, b := range bills {
		if !b.NextDueDate.IsEmpty() && (b.NextDueDate.Before(from.Time) || b.NextDueDate.After(until.Time)) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// parseTransactions converts the transactions tab. Headers: ID, Date, Type,
// Category, Description, Amount. Rows that cannot be read are returned
// separately.
func parseTransactions(values [][]interface{}) ([]core.Transaction, []rowError) {
	if len(values) == 0 {
		return nil, nil
	}
	h := toStrings(values[0])
	colID, colDate, colType := indexOf(h, "ID"), indexOf(h, "Date"), indexOf(h, "Type")
	colCat, colDesc, colAmount := indexOf(h, "Category"), indexOf(h, "Description"), indexOf(h, "Amount")

	var (
		out     []core.Transaction
		skipped []rowError
	)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if strings.Join(row, "") == "" {
			continue
		}
		id, _ := strconv.ParseInt(safeGet(row, colID), 10, 64)
		date, err := core.ParseDate(safeGet(row, colDate))
		if err != nil {
			skipped = append(skipped, rowError{Row: i + 1, Err: err})
			continue
		}
		amount, ok := parseAmount(safeGet(row, colAmount))
		if !ok {
			skipped = append(skipped, rowError{Row: i + 1, Err: fmt.Errorf("%w: %q", core.ErrInvalidAmount, safeGet(row, colAmount))})
			continue
		}
		out = append(out, core.Transaction{
			ID:          id,
			Type:        core.TransactionType(strings.ToUpper(safeGet(row, colType))),
			Category:    safeGet(row, colCat),
			Description: safeGet(row, colDesc),
			Amount:      amount,
			Date:        date,
		})
	}
	return out, skipped
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseAmount reads a cell such as "1.234,50", "1234.5" or "€ 12,00".
func parseAmount(s string) (core.Money, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "€"))
	if s == "" {
		return core.Money{}, false
	}
	// Thousands separators: the last separator is the decimal one.
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return core.Money{}, false
	}
	return core.MoneyFromDecimal(d), true
}
