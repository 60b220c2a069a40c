// Package performance reports how punctually members pay, across both
// contributions and loan repayments.
package performance

import (
	"cmp"
	"context"
	"slices"

	"go.uber.org/zap"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/domain/performance"
	"chama-ledger/internal/domain/repayment"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/internal/usecase"
)

type MemberPerformance struct {
	MemberID      string              `json:"member_id"`
	Name          string              `json:"name"`
	Contributions performance.Summary `json:"contributions"`
	Repayments    performance.Summary `json:"repayments"`
	Combined      performance.Summary `json:"combined"`
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	MemberPerformance
}

type Usecase struct {
	uow uow.UnitOfWork
	log *zap.Logger
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, log: log}
}

// Summary rates one member of the actor's group.
func (u *Usecase) Summary(ctx context.Context, actor auth.Actor, memberID string) (*MemberPerformance, error) {
	var out *MemberPerformance
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := r.Members.GetByMemberID(ctx, memberID)
		if err != nil {
			return usecase.NotFound(err, "member", memberID)
		}
		if err := actor.RequireGroup(m.GroupID); err != nil {
			return err
		}
		out, err = u.summarize(ctx, r, m)
		return err
	})
	return out, err
}

// Leaderboard ranks the group by combined score. Members without any rated
// activity come last; ties are broken by member id.
func (u *Usecase) Leaderboard(ctx context.Context, actor auth.Actor) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ms, err := r.Members.ListByGroupID(ctx, actor.GroupID)
		if err != nil {
			return err
		}
		out = make([]LeaderboardEntry, 0, len(ms))
		for i := range ms {
			p, err := u.summarize(ctx, r, &ms[i])
			if err != nil {
				return err
			}
			out = append(out, LeaderboardEntry{MemberPerformance: *p})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b LeaderboardEntry) int {
		ar, br := a.Combined.HasEnoughData(), b.Combined.HasEnoughData()
		switch {
		case ar && !br:
			return -1
		case !ar && br:
			return 1
		}
		if c := cmp.Compare(b.Combined.Score, a.Combined.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.MemberID, b.MemberID)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (u *Usecase) summarize(ctx context.Context, r uow.Repos, m *member.Member) (*MemberPerformance, error) {
	cs, err := r.Contributions.ListByMemberID(ctx, m.MemberID)
	if err != nil {
		return nil, err
	}
	ps, err := r.Repayments.ListByMemberID(ctx, m.MemberID)
	if err != nil {
		return nil, err
	}

	contrib := make([]performance.Event, 0, len(cs))
	for _, c := range cs {
		contrib = append(contrib, performance.Event{Rating: c.TimingRating, Weight: 1})
	}
	repay := make([]performance.Event, 0, len(ps))
	for _, p := range ps {
		if p.Status == repayment.StatusRejected {
			continue
		}
		repay = append(repay, performance.Event{Rating: p.TimingRating, Weight: 1})
	}
	return &MemberPerformance{
		MemberID:      m.MemberID,
		Name:          m.Name,
		Contributions: performance.Aggregate(contrib),
		Repayments:    performance.Aggregate(repay),
		Combined:      performance.Merge(contrib, repay),
	}, nil
}
