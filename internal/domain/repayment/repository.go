package repayment

import "context"

type Repository interface {
	Create(ctx context.Context, r *Repayment) error
	Save(ctx context.Context, r *Repayment) error
	GetByRepaymentID(ctx context.Context, repaymentID string) (*Repayment, error)

	// Transition moves a repayment out of pending with a conditional update.
	// It reports false when the row was no longer pending, so two concurrent
	// reviews can never both succeed.
	Transition(ctx context.Context, id uint64, rv Review) (bool, error)

	ListByLoanID(ctx context.Context, loanID uint64) ([]Repayment, error)
	ListByMemberID(ctx context.Context, memberID string) ([]Repayment, error)
}
