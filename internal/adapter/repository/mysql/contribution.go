package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	contributionDomain "chama-ledger/internal/domain/contribution"
)

type ContributionRepository struct{ db *gorm.DB }

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *contributionDomain.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContributionRepository) Save(ctx context.Context, c *contributionDomain.Contribution) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ContributionRepository) GetByContributionID(ctx context.Context, contributionID string) (*contributionDomain.Contribution, error) {
	var out contributionDomain.Contribution
	if err := r.db.WithContext(ctx).Where("contribution_id = ?", contributionID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ContributionRepository) GetByMemberWeek(ctx context.Context, memberID string, week int) (*contributionDomain.Contribution, error) {
	var out contributionDomain.Contribution
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND week_number = ?", memberID, week).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByMemberWeekForUpdate serializes payments against one period so partial
// amounts accumulate instead of overwriting each other.
func (r *ContributionRepository) GetByMemberWeekForUpdate(ctx context.Context, memberID string, week int) (*contributionDomain.Contribution, error) {
	var out contributionDomain.Contribution
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND week_number = ?", memberID, week).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ContributionRepository) ListByMemberID(ctx context.Context, memberID string) ([]contributionDomain.Contribution, error) {
	var out []contributionDomain.Contribution
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("week_number ASC").
		Find(&out).Error
	return out, err
}

func (r *ContributionRepository) ListByGroupWeek(ctx context.Context, groupID string, week int) ([]contributionDomain.Contribution, error) {
	var out []contributionDomain.Contribution
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND week_number = ?", groupID, week).
		Order("member_id ASC").
		Find(&out).Error
	return out, err
}

// SumPaidByMemberID is the member's savings balance.
func (r *ContributionRepository) SumPaidByMemberID(ctx context.Context, memberID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&contributionDomain.Contribution{}).
		Select("COALESCE(SUM(paid_amount), 0)").
		Where("member_id = ?", memberID).
		Row().
		Scan(&total)
	return total, err
}
