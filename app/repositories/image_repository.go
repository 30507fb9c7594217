package repositories

import (
	"context"

	"github.com/Rakhulsr/go-catalog/app/models"
	"gorm.io/gorm"
)

type ImageRepositoryImpl interface {
	Create(ctx context.Context, image *models.Image) error
	NextPosition(ctx context.Context, variantID string) (int, error)
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepositoryImpl {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) NextPosition(ctx context.Context, variantID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Image{}).Where("variant_id = ?", variantID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
