package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/go-catalog/app/models"
	"gorm.io/gorm"
)

type ShippingCategoryRepositoryImpl interface {
	Create(ctx context.Context, category *models.ShippingCategory) error
	GetByID(ctx context.Context, id string) (*models.ShippingCategory, error)
	GetByName(ctx context.Context, name string) (*models.ShippingCategory, error)
	GetAll(ctx context.Context) ([]models.ShippingCategory, error)
}

type shippingCategoryRepository struct {
	db *gorm.DB
}

func NewShippingCategoryRepository(db *gorm.DB) ShippingCategoryRepositoryImpl {
	return &shippingCategoryRepository{db: db}
}

func (r *shippingCategoryRepository) Create(ctx context.Context, category *models.ShippingCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *shippingCategoryRepository) GetByID(ctx context.Context, id string) (*models.ShippingCategory, error) {
	var category models.ShippingCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *shippingCategoryRepository) GetByName(ctx context.Context, name string) (*models.ShippingCategory, error) {
	var category models.ShippingCategory
	err := r.db.WithContext(ctx).First(&category, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *shippingCategoryRepository) GetAll(ctx context.Context) ([]models.ShippingCategory, error) {
	var categories []models.ShippingCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
