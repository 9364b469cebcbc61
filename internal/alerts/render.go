package alerts

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"finalerts/internal/core"
)

// Renderer turns an alert's structured message into display text for one
// locale and currency.
type Renderer struct {
	printer *message.Printer
	symbol  string
}

// NewRenderer creates a renderer that groups digits per tag and prefixes
// amounts with the narrow CLDR symbol of unit.
func NewRenderer(tag language.Tag, unit currency.Unit) *Renderer {
	p := message.NewPrinter(tag)
	sym := p.Sprint(currency.NarrowSymbol(unit))
	if r, _ := utf8.DecodeLastRuneInString(sym); unicode.IsLetter(r) {
		sym += " "
	}
	return &Renderer{printer: p, symbol: sym}
}

// NewRendererFromCodes parses a BCP 47 locale and an ISO 4217 currency code.
func NewRendererFromCodes(locale, currencyCode string) (*Renderer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	return NewRenderer(tag, unit), nil
}

// DefaultRenderer formats English text with euro amounts.
var DefaultRenderer = NewRenderer(language.English, currency.EUR)

// Money formats an amount with the currency symbol and two decimals. The
// whole units and the cents are printed separately so no digit goes through
// a float.
func (r *Renderer) Money(m core.Money) string {
	sign := ""
	if m.Cents < 0 {
		sign = "-"
	}
	d := m.Decimal().Abs()
	whole := d.Truncate(0)
	frac, _ := d.Sub(whole).Float64()
	// "0.25" in the printer's locale, without the leading zero
	cents := r.printer.Sprintf("%.2f", frac)
	_, size := utf8.DecodeRuneInString(cents)
	return sign + r.symbol + r.printer.Sprint(number.Decimal(whole.IntPart())) + cents[size:]
}

// Render returns the message text of a.
func (r *Renderer) Render(a Alert) string {
	msg := a.Message
	switch a.Kind {
	case KindBillDue, KindBillUrgent:
		return fmt.Sprintf("%s payment of %s %s", msg.Category, r.Money(msg.Amount), dueClause(msg.DaysUntilDue))
	case KindBudgetExceeded:
		return fmt.Sprintf("%s expenses exceeded your budget by %s", msg.Category, r.Money(msg.Overage))
	case KindBudgetWarning:
		return fmt.Sprintf("You've spent %d%% of your %s budget this month", msg.Percent, msg.Category)
	case KindSpendingSummary:
		return fmt.Sprintf("Total expenses: %s. Income: %s", r.Money(msg.TotalExpenses), r.Money(msg.TotalIncome))
	default:
		return a.Title
	}
}

func dueClause(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("was due %d days ago", -days)
	case days == -1:
		return "was due yesterday"
	case days == 0:
		return "is due today"
	case days == 1:
		return "is due tomorrow"
	default:
		return fmt.Sprintf("is due in %d days", days)
	}
}

// Details returns the raw fields behind an alert's message, keyed by
// snake_case names. Amounts are decimal strings in major units.
func Details(a Alert) map[string]any {
	msg := a.Message
	amount := func(m core.Money) string { return m.Decimal().StringFixed(2) }
	switch a.Kind {
	case KindBillDue, KindBillUrgent:
		return map[string]any{
			"category":       msg.Category,
			"amount":         amount(msg.Amount),
			"days_until_due": msg.DaysUntilDue,
		}
	case KindBudgetExceeded:
		return map[string]any{
			"category": msg.Category,
			"overage":  amount(msg.Overage),
			"percent":  msg.Percent,
		}
	case KindBudgetWarning:
		return map[string]any{
			"category": msg.Category,
			"percent":  msg.Percent,
		}
	case KindSpendingSummary:
		return map[string]any{
			"total_income":   amount(msg.TotalIncome),
			"total_expenses": amount(msg.TotalExpenses),
		}
	}
	return nil
}
