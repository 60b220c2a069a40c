package loan

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/repayment"
	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/internal/usecase"
	"chama-ledger/internal/usecase/settings"
	"chama-ledger/pkg/id"
)

type Usecase struct {
	uow uow.UnitOfWork
	log *zap.Logger
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, log: log, now: usecase.Clock}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

// Request opens a loan for the actor. The member must hold enough savings and
// no other requested, offered or active loan.
func (u *Usecase) Request(ctx context.Context, actor auth.Actor, in RequestInput) (*loan.Loan, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Invalid("amount", "must be greater than zero")
	}
	var out *loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		open, err := r.Loans.GetOpenLoanByMemberID(ctx, actor.MemberID)
		switch {
		case err == nil:
			return &apperr.IneligibleError{Reason: "member already has an open loan " + open.LoanID}
		case !usecase.IsMissing(err):
			return err
		}

		s, err := settings.Load(ctx, r.Settings, actor.GroupID, u.now())
		if err != nil {
			return err
		}
		savings, err := r.Contributions.SumPaidByMemberID(ctx, actor.MemberID)
		if err != nil {
			return err
		}
		if savings.LessThan(s.MinimumLoanSavings) {
			return &apperr.IneligibleError{
				Reason:   "savings below minimum",
				Required: s.MinimumLoanSavings,
				Actual:   savings,
			}
		}

		now := u.now()
		l := &loan.Loan{
			LoanID:          id.NewID32(),
			GroupID:         actor.GroupID,
			MemberID:        actor.MemberID,
			Amount:          in.Amount,
			Reason:          in.Reason,
			Status:          loan.StatusRequested,
			StatusUpdatedAt: now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("loan requested",
		zap.String("loan_id", out.LoanID), zap.String("member_id", out.MemberID), zap.String("amount", out.Amount.String()))
	return out, nil
}

// Offer fixes the terms of a requested loan.
func (u *Usecase) Offer(ctx context.Context, actor auth.Actor, loanID string, in OfferInput) (*loan.Loan, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := actor.RequireGroup(l.GroupID); err != nil {
			return err
		}
		s, err := settings.Load(ctx, r.Settings, l.GroupID, u.now())
		if err != nil {
			return err
		}
		terms := loan.Terms{
			Amount:            in.Amount,
			InterestRate:      s.InterestRate,
			Fees:              in.Fees,
			DueDate:           in.DueDate,
			InstallmentNumber: in.InstallmentNumber,
			Period:            s.LoanInstallmentPeriod,
		}
		if in.InterestRate != nil {
			terms.InterestRate = *in.InterestRate
		}
		if in.Period != nil {
			terms.Period = *in.Period
		}
		if err := l.Offer(terms, actor.MemberID, u.now()); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, usecase.NotFound(err, "loan", loanID)
	}
	u.log.Info("loan offered",
		zap.String("loan_id", out.LoanID), zap.String("total_due", out.TotalDue.String()), zap.String("by", actor.MemberID))
	return out, nil
}

// Respond lets the borrower accept or reject an offer. Accepting persists
// the installment schedule.
func (u *Usecase) Respond(ctx context.Context, actor auth.Actor, loanID string, accept bool) (*LoanView, error) {
	var out *LoanView
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := actor.RequireSelf(l.MemberID); err != nil {
			return err
		}
		now := u.now()
		if !accept {
			if err := l.Decline(now); err != nil {
				return err
			}
			out = &LoanView{Loan: *l, Outstanding: l.Outstanding()}
			return r.Loans.Save(ctx, l)
		}
		schedule, err := l.Accept(now)
		if err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.CreateInstallments(ctx, schedule); err != nil {
			return err
		}
		out = &LoanView{Loan: *l, Outstanding: l.Outstanding(), Installments: schedule}
		return nil
	})
	if err != nil {
		return nil, usecase.NotFound(err, "loan", loanID)
	}
	u.log.Info("loan offer answered",
		zap.String("loan_id", out.LoanID), zap.String("status", string(out.Status)))
	return out, nil
}

// Repay records a pending repayment. Loan totals change only on approval.
func (u *Usecase) Repay(ctx context.Context, actor auth.Actor, loanID string, in RepayInput) (*repayment.Repayment, error) {
	var out *repayment.Repayment
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := actor.RequireSelf(l.MemberID); err != nil {
			return err
		}
		if err := l.CheckRepayment(in.Amount); err != nil {
			return err
		}
		paid := timing.Day(u.now())
		if in.PaidDate != nil {
			paid = timing.Day(*in.PaidDate)
		}
		p := &repayment.Repayment{
			RepaymentID:  id.NewID32(),
			LoanID:       l.ID,
			MemberID:     l.MemberID,
			Amount:       in.Amount,
			PaidDate:     paid,
			Status:       repayment.StatusPending,
			TimingRating: timing.NotRated,
		}
		if err := r.Repayments.Create(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, usecase.NotFound(err, "loan", loanID)
	}
	u.log.Info("repayment submitted",
		zap.String("loan_id", loanID), zap.String("repayment_id", out.RepaymentID), zap.String("amount", out.Amount.String()))
	return out, nil
}

// Get returns a loan of the actor's group; members only see their own.
func (u *Usecase) Get(ctx context.Context, actor auth.Actor, loanID string) (*LoanView, error) {
	var out *LoanView
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return usecase.NotFound(err, "loan", loanID)
		}
		if err := u.canSee(actor, l); err != nil {
			return err
		}
		in, err := r.Loans.ListInstallments(ctx, l.ID)
		if err != nil {
			return err
		}
		out = &LoanView{Loan: *l, Outstanding: l.Outstanding(), Installments: in}
		return nil
	})
	return out, err
}

// List returns the actor's own loans, newest first.
func (u *Usecase) List(ctx context.Context, actor auth.Actor) ([]loan.Loan, error) {
	var out []loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ls, err := r.Loans.ListByMemberID(ctx, actor.MemberID)
		out = ls
		return err
	})
	return out, err
}

func (u *Usecase) ListRepayments(ctx context.Context, actor auth.Actor, loanID string) ([]repayment.Repayment, error) {
	var out []repayment.Repayment
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return usecase.NotFound(err, "loan", loanID)
		}
		if err := u.canSee(actor, l); err != nil {
			return err
		}
		ps, err := r.Repayments.ListByLoanID(ctx, l.ID)
		out = ps
		return err
	})
	return out, err
}

func (u *Usecase) canSee(actor auth.Actor, l *loan.Loan) error {
	if err := actor.RequireGroup(l.GroupID); err != nil {
		return err
	}
	return actor.RequireSelfOrAdmin(l.MemberID)
}
