// Package timing classifies a payment as early, on time or late relative to
// its due date and grace period. It is used identically for contributions and
// loan repayments and has no side effects.
package timing

import "time"

type Rating string

const (
	NotRated Rating = "not_rated"
	Early    Rating = "early"
	OnTime   Rating = "on_time"
	Late     Rating = "late"
)

// Valid reports whether r is one of the known ratings.
func (r Rating) Valid() bool {
	switch r {
	case NotRated, Early, OnTime, Late:
		return true
	}
	return false
}

// Rated reports whether r carries a timing judgement.
func (r Rating) Rated() bool { return r == Early || r == OnTime || r == Late }

// Points maps a rating to its numeric value (early=3, on_time=2, late=1).
// Unrated payments map to 0.
func (r Rating) Points() int {
	switch r {
	case Early:
		return 3
	case OnTime:
		return 2
	case Late:
		return 1
	}
	return 0
}

type Result struct {
	Rating   Rating `json:"rating"`
	DaysLate int    `json:"days_late"`
}

// Classify compares paid against due in whole calendar days.
// A nil due date yields NotRated: callers must not synthesize one.
func Classify(due *time.Time, paid time.Time, graceDays int) Result {
	if due == nil || due.IsZero() {
		return Result{Rating: NotRated}
	}
	if graceDays < 0 {
		graceDays = 0
	}
	diff := DaysBetween(*due, paid)
	switch {
	case diff < 0:
		return Result{Rating: Early}
	case diff <= graceDays:
		return Result{Rating: OnTime}
	default:
		return Result{Rating: Late, DaysLate: diff - graceDays}
	}
}

// DaysLate returns max(0, paid - due - grace); zero when due is unknown.
func DaysLate(due *time.Time, paid time.Time, graceDays int) int {
	return Classify(due, paid, graceDays).DaysLate
}
