package repayment

import (
	"time"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/timing"
)

// ClassifyAutomatic derives the rating from the expected due date. With no
// due date the repayment stays not_rated.
func ClassifyAutomatic(r *Repayment, expectedDue *time.Time, graceDays int) timing.Result {
	res := timing.Classify(expectedDue, r.PaidDate, graceDays)
	r.ExpectedDueDate = dayPtr(expectedDue)
	r.TimingRating = res.Rating
	r.DaysLate = res.DaysLate
	return res
}

// ApplyManualOverride records an admin's explicit rating. days_late is still
// measured against the due date when one is known and the rating is late.
func ApplyManualOverride(r *Repayment, rating timing.Rating, expectedDue *time.Time, graceDays int) (timing.Result, error) {
	if !rating.Rated() {
		return timing.Result{}, apperr.Invalid("rating", "must be early, on_time or late")
	}
	res := timing.Result{Rating: rating}
	if rating == timing.Late {
		res.DaysLate = timing.DaysLate(expectedDue, r.PaidDate, graceDays)
	}
	r.ExpectedDueDate = dayPtr(expectedDue)
	r.TimingRating = res.Rating
	r.DaysLate = res.DaysLate
	return res, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := timing.Day(*t)
	return &d
}
