package approval

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
	domainLoan "chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/repayment"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/internal/usecase"
	"chama-ledger/internal/usecase/settings"
)

// Usecase reviews pending repayments: approve, reject and timing ratings.
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

// Approve credits a pending repayment to its loan. The loan row stays locked
// for the whole transaction and the repayment leaves pending through a
// conditional update, so a second approval always loses.
func (u *Usecase) Approve(ctx context.Context, actor auth.Actor, repaymentID string) (*Outcome, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var (
		out    *Outcome
		closed bool
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, l, err := u.load(ctx, r, actor, repaymentID)
		if err != nil {
			return err
		}
		at := u.now()
		ok, err := r.Repayments.Transition(ctx, p.ID, repayment.Review{
			To:          repayment.StatusApproved,
			ReviewedBy:  actor.MemberID,
			ConfirmedAt: &at,
		})
		if err != nil {
			return err
		}
		if !ok {
			return u.alreadyProcessed(ctx, r, p, "approve")
		}
		if closed, err = l.ApplyApproved(p.Amount, at); err != nil {
			u.log.Warn("approval rejected by loan guard",
				zap.String("repayment_id", p.RepaymentID), zap.String("loan_id", l.LoanID), zap.Error(err))
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		p.Status = repayment.StatusApproved
		p.ReviewedBy = actor.MemberID
		p.ConfirmedAt = &at
		out = outcome(p, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("repayment approved",
		zap.String("repayment_id", out.Repayment.RepaymentID), zap.String("amount", out.Repayment.Amount.String()),
		zap.String("approved_sum", out.Loan.ApprovedSum.String()),
		zap.Bool("loan_closed", closed), zap.String("by", actor.MemberID))
	return out, nil
}

// Reject excludes a pending repayment from the loan for good.
func (u *Usecase) Reject(ctx context.Context, actor auth.Actor, repaymentID, notes string) (*Outcome, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var out *Outcome
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, l, err := u.load(ctx, r, actor, repaymentID)
		if err != nil {
			return err
		}
		ok, err := r.Repayments.Transition(ctx, p.ID, repayment.Review{
			To:         repayment.StatusRejected,
			ReviewedBy: actor.MemberID,
			Notes:      notes,
		})
		if err != nil {
			return err
		}
		if !ok {
			return u.alreadyProcessed(ctx, r, p, "reject")
		}
		p.Status = repayment.StatusRejected
		p.ReviewedBy = actor.MemberID
		p.ReviewNotes = notes
		out = outcome(p, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("repayment rejected", zap.String("repayment_id", out.Repayment.RepaymentID), zap.String("by", actor.MemberID))
	return out, nil
}

// RateTiming classifies a repayment automatically, or records an admin's
// explicit rating when one is given.
func (u *Usecase) RateTiming(ctx context.Context, actor auth.Actor, repaymentID string, in RateInput) (*repayment.Repayment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if in.Rating != nil && !in.Rating.Rated() {
		return nil, apperr.Invalid("rating", "must be early, on_time or late")
	}
	var out *repayment.Repayment
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, l, err := u.load(ctx, r, actor, repaymentID)
		if err != nil {
			return err
		}
		if p.Status == repayment.StatusRejected {
			return &apperr.InvalidStateError{Entity: "repayment", ID: p.RepaymentID, From: string(p.Status), Op: "rate"}
		}
		s, err := settings.Load(ctx, r.Settings, l.GroupID, u.now())
		if err != nil {
			return err
		}
		due := in.ExpectedDueDate
		if due == nil {
			if due, err = u.deriveDueDate(ctx, r, l, p); err != nil {
				return err
			}
		}
		grace := s.Contribution.GracePeriodDays
		if in.Rating == nil {
			repayment.ClassifyAutomatic(p, due, grace)
		} else if _, err := repayment.ApplyManualOverride(p, *in.Rating, due, grace); err != nil {
			return err
		}
		at := u.now()
		p.RatingNotes = in.Notes
		p.RatedBy = actor.MemberID
		p.RatedAt = &at
		if err := r.Repayments.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("repayment rated",
		zap.String("repayment_id", out.RepaymentID), zap.String("rating", string(out.TimingRating)),
		zap.Int("days_late", out.DaysLate), zap.Bool("manual", in.Rating != nil))
	return out, nil
}

// load fetches the repayment and locks its loan.
func (u *Usecase) load(ctx context.Context, r uow.Repos, actor auth.Actor, repaymentID string) (*repayment.Repayment, *domainLoan.Loan, error) {
	p, err := r.Repayments.GetByRepaymentID(ctx, repaymentID)
	if err != nil {
		return nil, nil, usecase.NotFound(err, "repayment", repaymentID)
	}
	l, err := r.Loans.GetByIDForUpdate(ctx, p.LoanID)
	if err != nil {
		return nil, nil, usecase.NotFound(err, "loan", repaymentID)
	}
	if err := actor.RequireGroup(l.GroupID); err != nil {
		return nil, nil, err
	}
	return p, l, nil
}

func (u *Usecase) alreadyProcessed(ctx context.Context, r uow.Repos, p *repayment.Repayment, op string) error {
	status := p.Status
	if cur, err := r.Repayments.GetByRepaymentID(ctx, p.RepaymentID); err == nil {
		status = cur.Status
	}
	u.log.Warn("repayment already processed",
		zap.String("repayment_id", p.RepaymentID), zap.String("op", op), zap.String("status", string(status)))
	return &apperr.AlreadyProcessedError{Entity: "repayment", ID: p.RepaymentID, Status: string(status)}
}

// deriveDueDate finds the first installment not yet covered by approved
// repayments paid before p.
func (u *Usecase) deriveDueDate(ctx context.Context, r uow.Repos, l *domainLoan.Loan, p *repayment.Repayment) (*time.Time, error) {
	schedule, err := r.Loans.ListInstallments(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if len(schedule) == 0 {
		return nil, nil
	}
	all, err := r.Repayments.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	prior := decimal.Zero
	for _, q := range all {
		if q.ID == p.ID || q.Status != repayment.StatusApproved {
			continue
		}
		if q.PaidDate.Before(p.PaidDate) || (q.PaidDate.Equal(p.PaidDate) && q.ID < p.ID) {
			prior = prior.Add(q.Amount)
		}
	}
	return domainLoan.ExpectedDueDate(schedule, prior), nil
}

