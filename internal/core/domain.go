package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Monthly RepetitionTypes = "monthly"
	Yearly  RepetitionTypes = "yearly"
	Weekly  RepetitionTypes = "weekly"
	Daily   RepetitionTypes = "daily"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// DefaultAlertThreshold is the warning percentage used when a budget has none.
const DefaultAlertThreshold = 80

type (
	RepetitionTypes string

	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Budget is a spending cap for one category in one month.
	Budget struct {
		ID             int64
		Category       string
		Amount         Money
		Spent          Money
		AlertThreshold *int // percent, nil means DefaultAlertThreshold
		Month          int
		Year           int
	}

	// UpcomingBill is the next occurrence of a recurring expense.
	UpcomingBill struct {
		ID          int64
		Category    string
		Amount      Money
		NextDueDate Date
	}

	// Transaction is a single income or expense entry. Recurring
	// transactions carry a frequency and the date of their next occurrence.
	Transaction struct {
		ID          int64
		Type        TransactionType
		Category    string
		Description string
		Amount      Money
		Date        Date
		Recurring   bool
		Every       RepetitionTypes
		NextDueDate Date
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeSpent    = errors.New("negative spent amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidThreshold = errors.New("alert threshold must be between 0 and 100")
	ErrInvalidDueDate   = errors.New("invalid due date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid repetition type")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string. A trailing time part
// ("2025-06-12T08:00:00") is ignored.
func ParseDate(s string) (Date, error) {
	v := strings.TrimSpace(s)
	if len(v) > 10 && v[10] == 'T' {
		v = v[:10]
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// DaysUntil returns the number of calendar days from d to other. Both are
// UTC midnights so the difference is always a whole number of days.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// IsEmpty returns true if the date is zero (for backward compatibility with optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Threshold returns the effective alert threshold in percent.
func (b Budget) Threshold() int {
	if b.AlertThreshold == nil {
		return DefaultAlertThreshold
	}
	return *b.AlertThreshold
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Spent.Cents < 0 {
		return ErrNegativeSpent
	}
	if t := b.Threshold(); t < 0 || t > 100 {
		return ErrInvalidThreshold
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (b UpcomingBill) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.NextDueDate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
	}
	return nil
}

func (t Transaction) Validate() error {
	switch t.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Recurring {
		return nil
	}
	if _, err := ScheduleFor(t.Every); err != nil {
		return err
	}
	if err := t.NextDueDate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
	}
	return nil
}
