package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the loan row until the surrounding tx ends.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	GetOpenLoanByMemberID(ctx context.Context, memberID string) (*Loan, error)
	ListByMemberID(ctx context.Context, memberID string) ([]Loan, error)

	CreateInstallments(ctx context.Context, in []Installment) error
	ListInstallments(ctx context.Context, loanID uint64) ([]Installment, error)
}
