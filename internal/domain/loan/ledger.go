package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/domain/timing"
)

var hundred = decimal.NewFromInt(100)

// legal transitions; anything absent is rejected.
var transitions = map[Status][]Status{
	StatusRequested: {StatusOffered},
	StatusOffered:   {StatusActive, StatusRejected},
	StatusActive:    {StatusClosed},
}

// CanTransition reports whether from -> to is a legal loan transition.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (l *Loan) transition(to Status, op string, at time.Time) error {
	if !CanTransition(l.Status, to) {
		return &apperr.InvalidStateError{Entity: "loan", ID: l.LoanID, From: string(l.Status), Op: op}
	}
	l.Status = to
	l.StatusUpdatedAt = at.UTC()
	return nil
}

// TotalDue = amount + amount*rate/100 + fees, rounded to cents.
func TotalDue(amount, interestRate, fees decimal.Decimal) decimal.Decimal {
	interest := amount.Mul(interestRate).Div(hundred)
	return amount.Add(interest).Add(fees).Round(2)
}

// InstallmentAmount splits total evenly over n installments, rounded to cents.
// The last installment of a schedule absorbs the rounding remainder.
func InstallmentAmount(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// Terms are the figures an admin fixes when offering a loan.
type Terms struct {
	Amount            decimal.Decimal
	InterestRate      decimal.Decimal
	Fees              decimal.Decimal
	DueDate           time.Time
	InstallmentNumber int
	Period            period.Frequency
}

func (t Terms) Validate() error {
	switch {
	case !t.Amount.IsPositive():
		return apperr.Invalid("amount", "must be greater than zero")
	case t.InterestRate.IsNegative() || t.InterestRate.GreaterThan(hundred):
		return apperr.Invalid("interest_rate", "must be between 0 and 100")
	case t.Fees.IsNegative():
		return apperr.Invalid("fees", "must not be negative")
	case t.DueDate.IsZero():
		return apperr.Invalid("due_date", "is required")
	case t.InstallmentNumber < 1:
		return apperr.Invalid("installment_number", "must be at least 1")
	case !t.Period.Valid():
		return apperr.Invalid("installment_period", "must be weekly or monthly")
	}
	return nil
}

// Offer fixes the loan terms and derives installment amount, total due and
// last due date. Only a requested loan can be offered.
func (l *Loan) Offer(t Terms, offeredBy string, at time.Time) error {
	if !CanTransition(l.Status, StatusOffered) {
		return &apperr.InvalidStateError{Entity: "loan", ID: l.LoanID, From: string(l.Status), Op: "offer"}
	}
	if err := t.Validate(); err != nil {
		return err
	}
	due := timing.Day(t.DueDate)
	last := period.Step(due, t.Period, t.InstallmentNumber-1)

	l.Amount = t.Amount
	l.InterestRate = t.InterestRate
	l.Fees = t.Fees
	l.InstallmentNumber = t.InstallmentNumber
	l.InstallmentPeriod = t.Period
	l.TotalDue = TotalDue(t.Amount, t.InterestRate, t.Fees)
	l.InstallmentAmount = InstallmentAmount(l.TotalDue, t.InstallmentNumber)
	l.ApprovedSum = decimal.Zero
	l.DueDate = &due
	l.LastDueDate = &last
	l.OfferedBy = offeredBy
	return l.transition(StatusOffered, "offer", at)
}

// Accept activates an offered loan and returns its installment schedule.
func (l *Loan) Accept(at time.Time) ([]Installment, error) {
	if err := l.transition(StatusActive, "accept", at); err != nil {
		return nil, err
	}
	return BuildSchedule(l), nil
}

// Decline rejects an offered loan.
func (l *Loan) Decline(at time.Time) error {
	return l.transition(StatusRejected, "reject", at)
}

// CheckRepayment validates a new repayment against the loan before it is
// recorded as pending.
func (l *Loan) CheckRepayment(amount decimal.Decimal) error {
	if l.Status != StatusActive {
		return &apperr.InvalidStateError{Entity: "loan", ID: l.LoanID, From: string(l.Status), Op: "repay"}
	}
	if !amount.IsPositive() {
		return apperr.Invalid("amount", "must be greater than zero")
	}
	if out := l.Outstanding(); amount.GreaterThan(out) {
		return &apperr.OverpaymentError{Amount: amount, Outstanding: out}
	}
	return nil
}

// ApplyApproved credits an approved repayment and closes the loan once the
// total due is covered. It is the only mutation of ApprovedSum.
func (l *Loan) ApplyApproved(amount decimal.Decimal, at time.Time) (closed bool, err error) {
	if err := l.CheckRepayment(amount); err != nil {
		return false, err
	}
	l.ApprovedSum = l.ApprovedSum.Add(amount)
	if l.ApprovedSum.GreaterThanOrEqual(l.TotalDue) {
		if err := l.transition(StatusClosed, "close", at); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// BuildSchedule lays out installments at DueDate + k*period. The last
// installment takes whatever rounding left over so the schedule sums to TotalDue.
func BuildSchedule(l *Loan) []Installment {
	if l.DueDate == nil || l.InstallmentNumber < 1 {
		return nil
	}
	dates := period.Series(*l.DueDate, l.InstallmentPeriod, l.InstallmentNumber)
	out := make([]Installment, 0, len(dates))
	allocated := decimal.Zero
	for i, d := range dates {
		amt := l.InstallmentAmount
		if i == len(dates)-1 {
			amt = l.TotalDue.Sub(allocated)
		}
		allocated = allocated.Add(amt)
		out = append(out, Installment{LoanID: l.ID, Sequence: i + 1, DueDate: d, Amount: amt})
	}
	return out
}

// ExpectedDueDate returns the due date of the first installment not yet
// covered by priorPaid. Nil when there is no schedule.
func ExpectedDueDate(schedule []Installment, priorPaid decimal.Decimal) *time.Time {
	if len(schedule) == 0 {
		return nil
	}
	covered := decimal.Zero
	for _, in := range schedule {
		covered = covered.Add(in.Amount)
		if covered.GreaterThan(priorPaid) {
			d := in.DueDate
			return &d
		}
	}
	d := schedule[len(schedule)-1].DueDate
	return &d
}
