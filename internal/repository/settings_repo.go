package repository

import (
	"context"

	"delipos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	Get(ctx context.Context, storeID string) (*model.StoreSettings, error)
	Upsert(ctx context.Context, s *model.StoreSettings) error
}

type settingsRepo struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) SettingsRepository { return &settingsRepo{db: db} }

func (r *settingsRepo) Get(ctx context.Context, storeID string) (*model.StoreSettings, error) {
	var s model.StoreSettings
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).First(&s).Error
	return &s, err
}

func (r *settingsRepo) Upsert(ctx context.Context, s *model.StoreSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		UpdateAll: true,
	}).Create(s).Error
}
