// This file implements the Strategy Pattern for advancing recurring bills.
// Each frequency type (daily, weekly, monthly, yearly) has its own strategy
// that computes the occurrence following a given due date.

package core

import (
	"fmt"
	"strings"
	"time"
)

// Schedule computes the next due date of a recurring transaction.
type Schedule interface {
	// Next returns the first occurrence strictly after due. anchor is the
	// original start date; monthly and yearly schedules keep its day of month
	// so a bill anchored on the 31st returns to the 31st after a short month.
	Next(due, anchor Date) Date
}

// DailySchedule repeats every day.
type DailySchedule struct{}

func (DailySchedule) Next(due, _ Date) Date {
	return due.AddDays(1)
}

// WeeklySchedule repeats every seven days.
type WeeklySchedule struct{}

func (WeeklySchedule) Next(due, _ Date) Date {
	return due.AddDays(7)
}

// MonthlySchedule repeats on the anchor day of each month, clamped to the
// last day of shorter months.
type MonthlySchedule struct{}

func (MonthlySchedule) Next(due, anchor Date) Date {
	targetDay := anchorDay(due, anchor)
	year, month := due.Year(), time.Month(due.Month())+1
	if month > time.December {
		month = time.January
		year++
	}
	return NewDate(year, int(month), clampDay(year, month, targetDay))
}

// YearlySchedule repeats on the anchor month and day each year.
type YearlySchedule struct{}

func (YearlySchedule) Next(due, anchor Date) Date {
	targetDay := anchorDay(due, anchor)
	month := time.Month(due.Month())
	if !anchor.IsZero() {
		month = time.Month(anchor.Month())
	}
	year := due.Year() + 1
	return NewDate(year, int(month), clampDay(year, month, targetDay))
}

func anchorDay(due, anchor Date) int {
	if anchor.IsZero() {
		return due.Day()
	}
	return anchor.Day()
}

// clampDay handles target days that don't exist in the month (e.g. Feb 31).
func clampDay(year int, month time.Month, day int) int {
	lastDayOfMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDayOfMonth {
		return lastDayOfMonth
	}
	return day
}

// schedules maps repetition types to their strategies.
var schedules = map[RepetitionTypes]Schedule{
	Daily:   DailySchedule{},
	Weekly:  WeeklySchedule{},
	Monthly: MonthlySchedule{},
	Yearly:  YearlySchedule{},
}

// ScheduleFor returns the schedule for a repetition type.
func ScheduleFor(every RepetitionTypes) (Schedule, error) {
	s, ok := schedules[every]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, every)
	}
	return s, nil
}

// NextDueAfter advances due by the schedule until it is strictly after paidOn.
// A bill paid late therefore skips every occurrence that has already passed.
func NextDueAfter(every RepetitionTypes, due, anchor, paidOn Date) (Date, error) {
	s, err := ScheduleFor(every)
	if err != nil {
		return Date{}, err
	}
	next := s.Next(due, anchor)
	for !next.After(paidOn.Time) {
		next = s.Next(next, anchor)
	}
	return next, nil
}

// ParseRepetition accepts a frequency in any case ("MONTHLY", "monthly").
func ParseRepetition(s string) (RepetitionTypes, error) {
	every := RepetitionTypes(strings.ToLower(strings.TrimSpace(s)))
	if _, err := ScheduleFor(every); err != nil {
		return "", err
	}
	return every, nil
}
