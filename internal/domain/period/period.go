// Package period describes recurring schedules (weekly or monthly) shared by
// contribution due dates and loan installments.
package period

import (
	"time"

	"chama-ledger/internal/domain/timing"
)

type Frequency string

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

func (f Frequency) Valid() bool { return f == Weekly || f == Monthly }

// Step returns d advanced by k periods. Monthly steps keep d's day of month
// and clamp to the month's last day.
func Step(d time.Time, f Frequency, k int) time.Time {
	d = timing.Day(d)
	if f == Weekly {
		return d.AddDate(0, 0, 7*k)
	}
	return timing.AddMonthsClamped(d, k, d.Day())
}

// Series returns n dates starting at first, one period apart.
func Series(first time.Time, f Frequency, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for k := 0; k < n; k++ {
		out = append(out, Step(first, f, k))
	}
	return out
}
