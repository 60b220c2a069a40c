package mysql

import (
	"context"

	"gorm.io/gorm"

	memberDomain "chama-ledger/internal/domain/member"
)

type MemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) *MemberRepository { return &MemberRepository{db: db} }

func (r *MemberRepository) Create(ctx context.Context, m *memberDomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MemberRepository) GetByMemberID(ctx context.Context, memberID string) (*memberDomain.Member, error) {
	var out memberDomain.Member
	if err := r.db.WithContext(ctx).Where("member_id = ?", memberID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MemberRepository) ListByGroupID(ctx context.Context, groupID string) ([]memberDomain.Member, error) {
	var out []memberDomain.Member
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC, member_id ASC").
		Find(&out).Error
	return out, err
}
