package uow

import (
	"context"

	"chama-ledger/internal/domain/contribution"
	"chama-ledger/internal/domain/group"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/domain/repayment"
	"chama-ledger/internal/domain/rotation"
)

// Repos are bound to the same transaction.
type Repos struct {
	Loans         loan.Repository
	Repayments    repayment.Repository
	Contributions contribution.Repository
	Members       member.Repository
	Settings      group.Repository
	Cycles        rotation.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
	// lock the cycle row first, then pass it in with its slots
	WithinCycleTx(ctx context.Context, cycleID string, fn func(r Repos, c *rotation.Cycle) error) error
}
