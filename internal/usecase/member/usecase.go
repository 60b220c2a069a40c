package member

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/contribution"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/usecase"
	"chama-ledger/pkg/id"
)

type Usecase struct {
	members       member.Repository
	contributions contribution.Repository
	log           *zap.Logger
	now           func() time.Time
}

func NewUsecase(members member.Repository, contributions contribution.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{members: members, contributions: contributions, log: log, now: usecase.Clock}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

type AddInput struct {
	MemberID string
	Name     string
	Phone    string
	Role     member.Role
	JoinedAt *time.Time
}

// MemberView adds the derived savings balance.
type MemberView struct {
	member.Member
	SavingsBalance decimal.Decimal `json:"savings_balance"`
}

func (u *Usecase) Add(ctx context.Context, actor auth.Actor, in AddInput) (*member.Member, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	role := in.Role
	if role == "" {
		role = member.RoleMember
	}
	if !role.Valid() {
		return nil, apperr.Invalid("role", "must be admin or member")
	}
	memberID := in.MemberID
	if memberID == "" {
		memberID = id.NewID32()
	} else if !id.IsID32(memberID) {
		return nil, apperr.Invalid("member_id", "must be 32 lowercase hex characters")
	}
	joined := timing.Day(u.now())
	if in.JoinedAt != nil {
		joined = timing.Day(*in.JoinedAt)
	}

	m := &member.Member{
		MemberID: memberID,
		GroupID:  actor.GroupID,
		Name:     name,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     role,
		JoinedAt: joined,
	}
	if err := u.members.Create(ctx, m); err != nil {
		return nil, err
	}
	u.log.Info("member added",
		zap.String("group_id", m.GroupID), zap.String("member_id", m.MemberID), zap.String("by", actor.MemberID))
	return m, nil
}

func (u *Usecase) List(ctx context.Context, actor auth.Actor) ([]MemberView, error) {
	ms, err := u.members.ListByGroupID(ctx, actor.GroupID)
	if err != nil {
		return nil, err
	}
	out := make([]MemberView, 0, len(ms))
	for _, m := range ms {
		bal, err := u.contributions.SumPaidByMemberID(ctx, m.MemberID)
		if err != nil {
			return nil, err
		}
		out = append(out, MemberView{Member: m, SavingsBalance: bal})
	}
	return out, nil
}

// Get loads a member of the actor's group.
func (u *Usecase) Get(ctx context.Context, actor auth.Actor, memberID string) (*member.Member, error) {
	m, err := u.members.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, usecase.NotFound(err, "member", memberID)
	}
	if err := actor.RequireGroup(m.GroupID); err != nil {
		return nil, err
	}
	return m, nil
}
