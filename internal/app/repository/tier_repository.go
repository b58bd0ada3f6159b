package repository

import (
	"github.com/nexapay/nexapay-backend/internal/app/model"
	"gorm.io/gorm"
)

// TierRepository reads the tier/requirement graph. The graph is owned by
// configuration management; this service never writes it.
type TierRepository interface {
	FindByID(id uint) (*model.TierConfig, error)
	FindByLevelName(levelName string) (*model.TierConfig, error)
	FindByCountry(country string) ([]model.TierConfig, error)
}

type tierRepository struct {
	db *gorm.DB
}

func NewTierRepository(db *gorm.DB) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) FindByID(id uint) (*model.TierConfig, error) {
	var tier model.TierConfig
	err := r.db.Preload("Requirements").First(&tier, id).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *tierRepository) FindByLevelName(levelName string) (*model.TierConfig, error) {
	var tier model.TierConfig
	err := r.db.
		Preload("Requirements").
		Where("level_name = ?", levelName).
		First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *tierRepository) FindByCountry(country string) ([]model.TierConfig, error) {
	var tiers []model.TierConfig
	err := r.db.
		Preload("Requirements").
		Where("country = ?", country).
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
