package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/go-catalog/app/models"
	"gorm.io/gorm"
)

type OptionTypeRepositoryImpl interface {
	Create(ctx context.Context, optionType *models.OptionType) error
	GetByID(ctx context.Context, id string) (*models.OptionType, error)
	GetByName(ctx context.Context, name string) (*models.OptionType, error)
	GetAll(ctx context.Context) ([]models.OptionType, error)
	CreateValue(ctx context.Context, value *models.OptionValue) error
	GetValuesByIDs(ctx context.Context, ids []string) ([]models.OptionValue, error)
	ValueExists(ctx context.Context, optionTypeID, name string, position int) (nameTaken, positionTaken bool, err error)
}

type optionTypeRepository struct {
	db *gorm.DB
}

func NewOptionTypeRepository(db *gorm.DB) OptionTypeRepositoryImpl {
	return &optionTypeRepository{db: db}
}

func orderedValues(db *gorm.DB) *gorm.DB {
	return db.Order("option_values.position ASC")
}

func (r *optionTypeRepository) Create(ctx context.Context, optionType *models.OptionType) error {
	return r.db.WithContext(ctx).Omit("OptionValues").Create(optionType).Error
}

func (r *optionTypeRepository) GetByID(ctx context.Context, id string) (*models.OptionType, error) {
	var optionType models.OptionType
	err := r.db.WithContext(ctx).Preload("OptionValues", orderedValues).First(&optionType, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &optionType, nil
}

func (r *optionTypeRepository) GetByName(ctx context.Context, name string) (*models.OptionType, error) {
	var optionType models.OptionType
	err := r.db.WithContext(ctx).Preload("OptionValues", orderedValues).First(&optionType, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &optionType, nil
}

func (r *optionTypeRepository) GetAll(ctx context.Context) ([]models.OptionType, error) {
	var optionTypes []models.OptionType
	err := r.db.WithContext(ctx).
		Preload("OptionValues", orderedValues).
		Order("position ASC, name ASC").
		Find(&optionTypes).Error
	if err != nil {
		return nil, err
	}
	return optionTypes, nil
}

func (r *optionTypeRepository) CreateValue(ctx context.Context, value *models.OptionValue) error {
	return r.db.WithContext(ctx).Omit("OptionType").Create(value).Error
}

func (r *optionTypeRepository) GetValuesByIDs(ctx context.Context, ids []string) ([]models.OptionValue, error) {
	var values []models.OptionValue
	if len(ids) == 0 {
		return values, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

func (r *optionTypeRepository) ValueExists(ctx context.Context, optionTypeID, name string, position int) (bool, bool, error) {
	var byName, byPosition int64
	if err := r.db.WithContext(ctx).Model(&models.OptionValue{}).
		Where("option_type_id = ? AND name = ?", optionTypeID, name).
		Count(&byName).Error; err != nil {
		return false, false, err
	}
	if err := r.db.WithContext(ctx).Model(&models.OptionValue{}).
		Where("option_type_id = ? AND position = ?", optionTypeID, position).
		Count(&byPosition).Error; err != nil {
		return false, false, err
	}
	return byName > 0, byPosition > 0, nil
}
