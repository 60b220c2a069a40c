package mysql

import (
	"context"

	"gorm.io/gorm"

	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/rotation"
	"chama-ledger/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// Repos returns repositories bound to db (a transaction or the root handle).
func Repos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:         &LoanRepository{db: db},
		Repayments:    &RepaymentRepository{db: db},
		Contributions: &ContributionRepository{db: db},
		Members:       &MemberRepository{db: db},
		Settings:      &SettingsRepository{db: db},
		Cycles:        &CycleRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (u *GormUoW) WithinCycleTx(ctx context.Context, cycleID string, fn func(r uow.Repos, c *rotation.Cycle) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		c, err := r.Cycles.GetByCycleIDForUpdate(ctx, cycleID)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}
