package mysql

import (
	"context"

	"gorm.io/gorm"

	"chama-ledger/internal/domain/group"
)

type SettingsRepository struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) *SettingsRepository { return &SettingsRepository{db: db} }

func (r *SettingsRepository) GetByGroupID(ctx context.Context, groupID string) (*group.Settings, error) {
	var out group.Settings
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SettingsRepository) Create(ctx context.Context, s *group.Settings) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Update writes every column of s guarded by the version it was read at.
func (r *SettingsRepository) Update(ctx context.Context, s *group.Settings, expectedVersion int) (bool, error) {
	s.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).
		Model(s).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("id", "group_id").
		Updates(s)
	if res.Error != nil || res.RowsAffected == 0 {
		s.Version = expectedVersion
		return false, res.Error
	}
	return true, nil
}
