package contribution

import (
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/domain/timing"
)

// NextDueDate returns the first due date on or after from.
//
// weekly:  dueDay is 1..7 with Monday = 1.
// monthly: dueDay is 1..31, clamped to the last day of short months.
func NextDueDate(f period.Frequency, dueDay int, from time.Time) (time.Time, error) {
	from = timing.Day(from)
	switch f {
	case period.Weekly:
		if dueDay < 1 || dueDay > 7 {
			return time.Time{}, apperr.Invalid("due_day", "must be 1..7 for weekly schedules")
		}
		target := time.Weekday(dueDay % 7)
		delta := (int(target) - int(from.Weekday()) + 7) % 7
		return from.AddDate(0, 0, delta), nil
	case period.Monthly:
		if dueDay < 1 || dueDay > 31 {
			return time.Time{}, apperr.Invalid("due_day", "must be 1..31 for monthly schedules")
		}
		candidate := timing.AddMonthsClamped(from, 0, dueDay)
		if candidate.Before(from) {
			candidate = timing.AddMonthsClamped(from, 1, dueDay)
		}
		return candidate, nil
	}
	return time.Time{}, apperr.Invalid("frequency", "must be weekly or monthly")
}

// PeriodDueDate returns the due date of period n (1-based) of a schedule that
// starts at start.
func PeriodDueDate(f period.Frequency, dueDay int, start time.Time, n int) (time.Time, error) {
	if n < 1 {
		return time.Time{}, apperr.Invalid("week_number", "must be at least 1")
	}
	first, err := NextDueDate(f, dueDay, start)
	if err != nil {
		return time.Time{}, err
	}
	if f == period.Weekly {
		return first.AddDate(0, 0, 7*(n-1)), nil
	}
	// step from the first due date using dueDay, not first.Day(), which may be clamped
	return timing.AddMonthsClamped(first, n-1, dueDay), nil
}

// PeriodNumber returns the period whose due date is the first on or after
// date. Dates before the first due date belong to period 1.
func PeriodNumber(f period.Frequency, dueDay int, start, date time.Time) (int, error) {
	first, err := NextDueDate(f, dueDay, start)
	if err != nil {
		return 0, err
	}
	next, err := NextDueDate(f, dueDay, date)
	if err != nil {
		return 0, err
	}
	if next.Before(first) {
		return 1, nil
	}
	if f == period.Weekly {
		return timing.DaysBetween(first, next)/7 + 1, nil
	}
	months := (next.Year()-first.Year())*12 + int(next.Month()) - int(first.Month())
	return months + 1, nil
}

// ReminderDate is when a reminder for due should go out.
func ReminderDate(due time.Time, daysBefore int) time.Time {
	return timing.Day(due).AddDate(0, 0, -daysBefore)
}

// IsPastGrace reports whether paid falls after due + grace.
func IsPastGrace(due, paid time.Time, graceDays int) bool {
	return timing.DaysBetween(due, paid) > graceDays
}

// ExpectedAmount adds the penalty once a payment lands after the grace period.
func ExpectedAmount(base, penalty decimal.Decimal, due, paid time.Time, graceDays int) decimal.Decimal {
	if IsPastGrace(due, paid, graceDays) {
		return base.Add(penalty)
	}
	return base
}
