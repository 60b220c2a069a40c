package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/contribution"
	"chama-ledger/internal/domain/rotation"
	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/internal/usecase"
	"chama-ledger/internal/usecase/settings"
	"chama-ledger/pkg/id"
)

type Usecase struct {
	uow     uow.UnitOfWork
	log     *zap.Logger
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, log: log, now: usecase.Clock}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

// WithShuffle replaces the random permutation used by reshuffled cycles.
func (u *Usecase) WithShuffle(fn func(n int, swap func(i, j int))) *Usecase { u.shuffle = fn; return u }

// Create opens the group's next cycle once the previous one is complete.
func (u *Usecase) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*CycleView, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var out *rotation.Cycle
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		latest, err := r.Cycles.GetLatestByGroupID(ctx, actor.GroupID)
		switch {
		case err == nil:
			if latest.Status == rotation.StatusActive {
				return &apperr.InvalidStateError{Entity: "rotation_cycle", ID: latest.CycleID, From: string(latest.Status), Op: "start a new cycle"}
			}
		case usecase.IsMissing(err):
			latest = nil
		default:
			return err
		}

		today := timing.Day(u.now())
		s, err := settings.Load(ctx, r.Settings, actor.GroupID, today)
		if err != nil {
			return err
		}
		ms, err := r.Members.ListByGroupID(ctx, actor.GroupID)
		if err != nil {
			return err
		}
		req := rotation.OrderRequest{Explicit: in.Order, Reshuffle: in.Reshuffle, Shuffle: u.shuffle}
		for _, m := range ms {
			req.Members = append(req.Members, m.MemberID)
		}
		number := 1
		if latest != nil {
			req.Previous = latest.Order()
			number = latest.CycleNumber + 1
		}
		order, err := rotation.ResolveOrder(req)
		if err != nil {
			return err
		}

		cs := s.Contribution
		amount, freq := cs.Amount, cs.Frequency
		if in.ContributionAmount != nil {
			amount = *in.ContributionAmount
		}
		// Slots map onto contribution periods, so the cycle cannot run on a
		// different calendar than the contributions that fund it.
		if in.Frequency != nil && *in.Frequency != cs.Frequency {
			return apperr.Invalid("frequency", "must match the contribution frequency "+string(cs.Frequency))
		}
		c, err := rotation.NewCycle(actor.GroupID, number, amount, freq, order)
		if err != nil {
			return err
		}
		c.CycleID = id.NewID32()
		if c.StartWeek, err = contribution.PeriodNumber(cs.Frequency, cs.DueDay, cs.StartDate, today); err != nil {
			return err
		}
		if err := r.Cycles.Create(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("rotation cycle created",
		zap.String("cycle_id", out.CycleID), zap.Int("cycle_number", out.CycleNumber),
		zap.Int("members", len(out.Slots)), zap.Int("start_week", out.StartWeek))
	return view(out), nil
}

// RecordObligationMet marks the slot at position as paid out.
func (u *Usecase) RecordObligationMet(ctx context.Context, actor auth.Actor, cycleID string, position int) (*CycleView, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var out *rotation.Cycle
	err := u.uow.WithinCycleTx(ctx, cycleID, func(r uow.Repos, c *rotation.Cycle) error {
		if err := actor.RequireGroup(c.GroupID); err != nil {
			return err
		}
		if err := u.advance(ctx, r, c, position); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, usecase.NotFound(err, "rotation_cycle", cycleID)
	}
	return view(out), nil
}

// State returns the group's active cycle, or its most recent one.
func (u *Usecase) State(ctx context.Context, actor auth.Actor) (*CycleView, error) {
	var out *rotation.Cycle
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Cycles.GetActiveByGroupID(ctx, actor.GroupID)
		if usecase.IsMissing(err) {
			c, err = r.Cycles.GetLatestByGroupID(ctx, actor.GroupID)
		}
		if err != nil {
			return usecase.NotFound(err, "rotation_cycle", actor.GroupID)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view(out), nil
}

// PeriodSettled advances the active cycle once every member has settled the
// period that funds the current recipient. Other periods are ignored.
func (u *Usecase) PeriodSettled(ctx context.Context, groupID string, week int) error {
	var cycleID string
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Cycles.GetActiveByGroupID(ctx, groupID)
		if err != nil {
			return err
		}
		cycleID = c.CycleID
		return nil
	})
	if usecase.IsMissing(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return u.uow.WithinCycleTx(ctx, cycleID, func(r uow.Repos, c *rotation.Cycle) error {
		if c.Status != rotation.StatusActive || week < c.WeekFor(c.CurrentRecipientPosition) {
			return nil
		}
		// Periods paid ahead of time fund later slots; keep moving until the
		// current slot's period is still open.
		for c.Status == rotation.StatusActive {
			pos := c.CurrentRecipientPosition
			ok, err := settledByAll(ctx, r, c, c.WeekFor(pos))
			if err != nil || !ok {
				return err
			}
			err = u.advance(ctx, r, c, pos)
			if errors.Is(err, apperr.ErrAlreadyProcessed) {
				return nil
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// settledByAll reports whether every member in the cycle has settled week.
func settledByAll(ctx context.Context, r uow.Repos, c *rotation.Cycle, week int) (bool, error) {
	cs, err := r.Contributions.ListByGroupWeek(ctx, c.GroupID, week)
	if err != nil {
		return false, err
	}
	paid := make(map[string]bool, len(cs))
	for _, ct := range cs {
		if ct.Status.Settled() {
			paid[ct.MemberID] = true
		}
	}
	for _, s := range c.Slots {
		if !paid[s.MemberID] {
			return false, nil
		}
	}
	return true, nil
}

func (u *Usecase) advance(ctx context.Context, r uow.Repos, c *rotation.Cycle, position int) error {
	expected := c.Version
	recipient := ""
	if s, ok := c.Slot(position); ok {
		recipient = s.MemberID
	}
	if err := c.RecordObligationMet(position, u.now()); err != nil {
		return err
	}
	ok, err := r.Cycles.Update(ctx, c, expected)
	if err != nil {
		return err
	}
	if !ok {
		u.log.Warn("rotation cycle version conflict", zap.String("cycle_id", c.CycleID), zap.Int("version", expected))
		return fmt.Errorf("rotation cycle %s: %w", c.CycleID, apperr.ErrConflict)
	}
	u.log.Info("rotation payout recorded",
		zap.String("cycle_id", c.CycleID), zap.Int("position", position), zap.String("recipient", recipient),
		zap.Int("next_position", c.CurrentRecipientPosition), zap.String("status", string(c.Status)))
	return nil
}
