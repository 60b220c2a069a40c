package contribution

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/contribution"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/internal/usecase"
	"chama-ledger/internal/usecase/settings"
	"chama-ledger/pkg/id"
)

// ObligationNotifier hears about every period a member fully settles.
type ObligationNotifier interface {
	PeriodSettled(ctx context.Context, groupID string, week int) error
}

type Usecase struct {
	uow      uow.UnitOfWork
	log      *zap.Logger
	now      func() time.Time
	notifier ObligationNotifier
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, log: log, now: usecase.Clock}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

// WithNotifier registers n to run after a period is settled and committed.
func (u *Usecase) WithNotifier(n ObligationNotifier) *Usecase { u.notifier = n; return u }

// Record applies a payment to the member's contribution for a period,
// creating the record on the first payment.
func (u *Usecase) Record(ctx context.Context, actor auth.Actor, in RecordInput) (*contribution.Contribution, error) {
	if in.WeekNumber < 1 {
		return nil, apperr.Invalid("week_number", "must be at least 1")
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Invalid("amount", "must be greater than zero")
	}
	var out *contribution.Contribution
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := u.member(ctx, r, actor, in.MemberID)
		if err != nil {
			return err
		}
		s, err := settings.Load(ctx, r.Settings, m.GroupID, u.now())
		if err != nil {
			return err
		}
		cs := s.Contribution

		c, err := r.Contributions.GetByMemberWeekForUpdate(ctx, m.MemberID, in.WeekNumber)
		created := false
		switch {
		case err == nil:
		case usecase.IsMissing(err):
			due, err := contribution.PeriodDueDate(cs.Frequency, cs.DueDay, cs.StartDate, in.WeekNumber)
			if err != nil {
				return err
			}
			c = &contribution.Contribution{
				ContributionID: id.NewID32(),
				GroupID:        m.GroupID,
				MemberID:       m.MemberID,
				WeekNumber:     in.WeekNumber,
				ExpectedAmount: cs.Amount,
				PaidAmount:     decimal.Zero,
				PenaltyApplied: decimal.Zero,
				DueDate:        due,
				Status:         contribution.StatusPending,
				TimingRating:   timing.NotRated,
			}
			created = true
		default:
			return err
		}

		paid := u.now()
		if in.PaidDate != nil {
			paid = *in.PaidDate
		}
		policy := contribution.Policy{PenaltyAmount: cs.PenaltyAmount, GracePeriodDays: cs.GracePeriodDays}
		if err := c.ApplyPayment(in.Amount, paid, policy); err != nil {
			return err
		}
		if created {
			err = r.Contributions.Create(ctx, c)
		} else {
			err = r.Contributions.Save(ctx, c)
		}
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("contribution recorded",
		zap.String("contribution_id", out.ContributionID), zap.String("member_id", out.MemberID),
		zap.Int("week", out.WeekNumber), zap.String("amount", in.Amount.String()),
		zap.String("status", string(out.Status)), zap.String("by", actor.MemberID))

	if out.Status.Settled() && u.notifier != nil {
		if err := u.notifier.PeriodSettled(ctx, out.GroupID, out.WeekNumber); err != nil {
			u.log.Warn("period settlement notification failed",
				zap.String("group_id", out.GroupID), zap.Int("week", out.WeekNumber), zap.Error(err))
		}
	}
	return out, nil
}

// List returns a member's contributions; members only see their own.
func (u *Usecase) List(ctx context.Context, actor auth.Actor, memberID string) (*MemberContributions, error) {
	var out *MemberContributions
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := u.member(ctx, r, actor, memberID)
		if err != nil {
			return err
		}
		cs, err := r.Contributions.ListByMemberID(ctx, m.MemberID)
		if err != nil {
			return err
		}
		out = &MemberContributions{MemberID: m.MemberID, SavingsBalance: contribution.SavingsBalance(cs), Contributions: cs}
		return nil
	})
	return out, err
}

// RateTiming re-runs the automatic classification or records an admin's rating.
func (u *Usecase) RateTiming(ctx context.Context, actor auth.Actor, contributionID string, in RateInput) (*contribution.Contribution, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var out *contribution.Contribution
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Contributions.GetByContributionID(ctx, contributionID)
		if err != nil {
			return usecase.NotFound(err, "contribution", contributionID)
		}
		if err := actor.RequireGroup(c.GroupID); err != nil {
			return err
		}
		s, err := settings.Load(ctx, r.Settings, c.GroupID, u.now())
		if err != nil {
			return err
		}
		if err := c.RateTiming(in.Rating, s.Contribution.GracePeriodDays); err != nil {
			return err
		}
		c.RatingNotes = in.Notes
		c.RatedBy = actor.MemberID
		if err := r.Contributions.Save(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("contribution rated",
		zap.String("contribution_id", out.ContributionID), zap.String("rating", string(out.TimingRating)),
		zap.Bool("manual", in.Rating != nil))
	return out, nil
}

// Schedule computes the next due date of the actor's group.
func (u *Usecase) Schedule(ctx context.Context, actor auth.Actor) (*ScheduleView, error) {
	var out *ScheduleView
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		today := timing.Day(u.now())
		s, err := settings.Load(ctx, r.Settings, actor.GroupID, today)
		if err != nil {
			return err
		}
		cs := s.Contribution
		next, err := contribution.NextDueDate(cs.Frequency, cs.DueDay, today)
		if err != nil {
			return err
		}
		week, err := contribution.PeriodNumber(cs.Frequency, cs.DueDay, cs.StartDate, today)
		if err != nil {
			return err
		}
		out = &ScheduleView{
			Frequency:          cs.Frequency,
			DueDay:             cs.DueDay,
			Amount:             cs.Amount,
			PenaltyAmount:      cs.PenaltyAmount,
			GracePeriodDays:    cs.GracePeriodDays,
			CurrentWeek:        week,
			NextDueDate:        next,
			ReminderDate:       contribution.ReminderDate(next, cs.ReminderDaysBefore),
			ReminderDaysBefore: cs.ReminderDaysBefore,
			AutoReminders:      cs.AutoReminders,
		}
		return nil
	})
	return out, err
}

func (u *Usecase) member(ctx context.Context, r uow.Repos, actor auth.Actor, memberID string) (*member.Member, error) {
	m, err := r.Members.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, usecase.NotFound(err, "member", memberID)
	}
	if err := actor.RequireGroup(m.GroupID); err != nil {
		return nil, err
	}
	if err := actor.RequireSelfOrAdmin(m.MemberID); err != nil {
		return nil, err
	}
	return m, nil
}
