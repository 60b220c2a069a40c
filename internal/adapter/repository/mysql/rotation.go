package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chama-ledger/internal/domain/rotation"
)

type CycleRepository struct{ db *gorm.DB }

func NewCycleRepository(db *gorm.DB) *CycleRepository { return &CycleRepository{db: db} }

// Create inserts the cycle together with its slots.
func (r *CycleRepository) Create(ctx context.Context, c *rotation.Cycle) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CycleRepository) GetByCycleIDForUpdate(ctx context.Context, cycleID string) (*rotation.Cycle, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cycle_id = ?", cycleID)
	return r.first(ctx, q)
}

func (r *CycleRepository) GetActiveByGroupID(ctx context.Context, groupID string) (*rotation.Cycle, error) {
	q := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, rotation.StatusActive).
		Order("cycle_number DESC")
	return r.first(ctx, q)
}

func (r *CycleRepository) GetLatestByGroupID(ctx context.Context, groupID string) (*rotation.Cycle, error) {
	q := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("cycle_number DESC")
	return r.first(ctx, q)
}

func (r *CycleRepository) first(ctx context.Context, q *gorm.DB) (*rotation.Cycle, error) {
	var out rotation.Cycle
	if err := q.First(&out).Error; err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", out.ID).
		Order("position ASC").
		Find(&out.Slots).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update bumps the version only when it still matches expectedVersion, then
// saves the slots in the same transaction as the caller.
func (r *CycleRepository) Update(ctx context.Context, c *rotation.Cycle, expectedVersion int) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&rotation.Cycle{}).
		Where("id = ? AND version = ?", c.ID, expectedVersion).
		Updates(map[string]any{
			"current_recipient_position": c.CurrentRecipientPosition,
			"status":                     c.Status,
			"version":                    expectedVersion + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	for i := range c.Slots {
		if err := db.Save(&c.Slots[i]).Error; err != nil {
			return false, err
		}
	}
	c.Version = expectedVersion + 1
	return true, nil
}
