package approval

import (
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/repayment"
	"chama-ledger/internal/domain/timing"
)

// Outcome is what an approve or reject leaves behind.
type Outcome struct {
	Repayment *repayment.Repayment `json:"repayment"`
	Loan      LoanState            `json:"loan"`
}

type LoanState struct {
	LoanID      string          `json:"loan_id"`
	Status      loan.Status     `json:"status"`
	ApprovedSum decimal.Decimal `json:"approved_sum"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

func outcome(p *repayment.Repayment, l *loan.Loan) *Outcome {
	return &Outcome{
		Repayment: p,
		Loan: LoanState{
			LoanID:      l.LoanID,
			Status:      l.Status,
			ApprovedSum: l.ApprovedSum,
			Outstanding: l.Outstanding(),
		},
	}
}

// RateInput drives RateTiming. A nil Rating runs the automatic
// classification; a nil ExpectedDueDate is derived from the loan schedule.
type RateInput struct {
	ExpectedDueDate *time.Time
	Rating          *timing.Rating
	Notes           string
}
