package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/go-catalog/app/models"
	"gorm.io/gorm"
)

type TaxCategoryRepositoryImpl interface {
	Create(ctx context.Context, category *models.TaxCategory) error
	GetByID(ctx context.Context, id string) (*models.TaxCategory, error)
	GetByName(ctx context.Context, name string) (*models.TaxCategory, error)
	GetAll(ctx context.Context) ([]models.TaxCategory, error)
}

type taxCategoryRepository struct {
	db *gorm.DB
}

func NewTaxCategoryRepository(db *gorm.DB) TaxCategoryRepositoryImpl {
	return &taxCategoryRepository{db: db}
}

func (r *taxCategoryRepository) Create(ctx context.Context, category *models.TaxCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *taxCategoryRepository) GetByID(ctx context.Context, id string) (*models.TaxCategory, error) {
	var category models.TaxCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *taxCategoryRepository) GetByName(ctx context.Context, name string) (*models.TaxCategory, error) {
	var category models.TaxCategory
	err := r.db.WithContext(ctx).First(&category, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *taxCategoryRepository) GetAll(ctx context.Context) ([]models.TaxCategory, error) {
	var categories []models.TaxCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
