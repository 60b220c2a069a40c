package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/period"
)

type RequestInput struct {
	Amount decimal.Decimal
	Reason string
}

// OfferInput carries the admin's terms. Nil rate and period fall back to the
// group settings.
type OfferInput struct {
	Amount            decimal.Decimal
	InterestRate      *decimal.Decimal
	Fees              decimal.Decimal
	DueDate           time.Time
	InstallmentNumber int
	Period            *period.Frequency
}

type RepayInput struct {
	Amount   decimal.Decimal
	PaidDate *time.Time
}

// LoanView is a loan with its installment schedule.
type LoanView struct {
	loan.Loan
	Outstanding  decimal.Decimal    `json:"outstanding"`
	Installments []loan.Installment `json:"installments,omitempty"`
}
