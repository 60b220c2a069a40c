package settings

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/group"
	"chama-ledger/internal/usecase"
)

type Usecase struct {
	repo group.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewUsecase(repo group.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, log: log, now: usecase.Clock}
}

// WithClock overrides the time source.
func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

// Load returns the group's settings, creating the defaults on first read.
func Load(ctx context.Context, repo group.Repository, groupID string, today time.Time) (*group.Settings, error) {
	s, err := repo.GetByGroupID(ctx, groupID)
	if err == nil {
		return s, nil
	}
	if !usecase.IsMissing(err) {
		return nil, err
	}
	def := group.Defaults(groupID, today)
	if err := repo.Create(ctx, &def); err != nil {
		// lost a race with another first read
		if s, again := repo.GetByGroupID(ctx, groupID); again == nil {
			return s, nil
		}
		return nil, err
	}
	return &def, nil
}

func (u *Usecase) Get(ctx context.Context, actor auth.Actor) (*group.Settings, error) {
	return Load(ctx, u.repo, actor.GroupID, u.now())
}

// Update applies a partial change, validated as a whole, guarded by version.
func (u *Usecase) Update(ctx context.Context, actor auth.Actor, p group.Patch) (*group.Settings, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	cur, err := Load(ctx, u.repo, actor.GroupID, u.now())
	if err != nil {
		return nil, err
	}
	next, err := p.Apply(*cur)
	if err != nil {
		return nil, err
	}
	ok, err := u.repo.Update(ctx, &next, cur.Version)
	if err != nil {
		return nil, err
	}
	if !ok {
		u.log.Warn("settings version conflict",
			zap.String("group_id", actor.GroupID), zap.Int("version", cur.Version))
		return nil, fmt.Errorf("settings for group %s: %w", actor.GroupID, apperr.ErrConflict)
	}
	u.log.Info("settings updated",
		zap.String("group_id", actor.GroupID), zap.String("by", actor.MemberID), zap.Int("version", next.Version))
	return &next, nil
}
