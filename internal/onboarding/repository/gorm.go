package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

// OnboardingSnapshot is the Postgres row of one vendor's onboarding state
type OnboardingSnapshot struct {
	Key       string         `gorm:"primaryKey;size:191"`
	VendorID  string         `gorm:"size:128;not null;index"`
	State     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (OnboardingSnapshot) TableName() string { return "onboarding_snapshots" }

type GormStateStore struct {
	db *gorm.DB
}

func NewGormStateStore(db *gorm.DB) *GormStateStore {
	return &GormStateStore{db: db}
}

func (r *GormStateStore) AutoMigrate() error {
	return r.db.AutoMigrate(&OnboardingSnapshot{})
}

func (r *GormStateStore) Save(ctx context.Context, vendorID string, snapshot []byte) error {
	row := OnboardingSnapshot{
		Key:      domain.StateKey(vendorID),
		VendorID: vendorID,
		State:    datatypes.JSON(snapshot),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&row).Error
}

func (r *GormStateStore) Load(ctx context.Context, vendorID string) ([]byte, error) {
	var row OnboardingSnapshot
	err := r.db.WithContext(ctx).Where("key = ?", domain.StateKey(vendorID)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.State), nil
}

func (r *GormStateStore) Delete(ctx context.Context, vendorID string) error {
	return r.db.WithContext(ctx).Where("key = ?", domain.StateKey(vendorID)).Delete(&OnboardingSnapshot{}).Error
}

func (r *GormStateStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
