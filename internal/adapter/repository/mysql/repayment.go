package mysql

import (
	"context"

	"gorm.io/gorm"

	repaymentDomain "chama-ledger/internal/domain/repayment"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository { return &RepaymentRepository{db: db} }

func (r *RepaymentRepository) Create(ctx context.Context, p *repaymentDomain.Repayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *RepaymentRepository) Save(ctx context.Context, p *repaymentDomain.Repayment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *RepaymentRepository) GetByRepaymentID(ctx context.Context, repaymentID string) (*repaymentDomain.Repayment, error) {
	var out repaymentDomain.Repayment
	if err := r.db.WithContext(ctx).Where("repayment_id = ?", repaymentID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// Transition is a compare-and-swap on status: UPDATE ... WHERE status = 'pending'.
func (r *RepaymentRepository) Transition(ctx context.Context, id uint64, rv repaymentDomain.Review) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&repaymentDomain.Repayment{}).
		Where("id = ? AND status = ?", id, repaymentDomain.StatusPending).
		Updates(map[string]any{
			"status":       rv.To,
			"reviewed_by":  rv.ReviewedBy,
			"review_notes": rv.Notes,
			"confirmed_at": rv.ConfirmedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *RepaymentRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]repaymentDomain.Repayment, error) {
	var out []repaymentDomain.Repayment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *RepaymentRepository) ListByMemberID(ctx context.Context, memberID string) ([]repaymentDomain.Repayment, error) {
	var out []repaymentDomain.Repayment
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("paid_date ASC, id ASC").
		Find(&out).Error
	return out, err
}
