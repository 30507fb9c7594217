package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariantRepositoryImpl interface {
	Create(ctx context.Context, variant *models.Variant) error
	LinkOptionValues(ctx context.Context, variantID string, optionValueIDs []string) error
	GetByID(ctx context.Context, id string) (*models.Variant, error)
	GetBySKU(ctx context.Context, sku string) (*models.Variant, error)
	GetByProductID(ctx context.Context, productID string) ([]models.Variant, error)
	IsSKUExists(ctx context.Context, sku string) (bool, error)
	CountOptionVariants(ctx context.Context, productID string) (int64, error)
	NextPosition(ctx context.Context, productID string) (int, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
	UpdateSKU(ctx context.Context, id, sku string) error
	AdjustStock(ctx context.Context, id string, delta int) (bool, error)
	Deactivate(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	IsReferencedByOrder(ctx context.Context, id string) (bool, error)
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepositoryImpl {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(ctx context.Context, variant *models.Variant) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(variant).Error
}

func (r *variantRepository) LinkOptionValues(ctx context.Context, variantID string, optionValueIDs []string) error {
	if len(optionValueIDs) == 0 {
		return nil
	}
	links := make([]models.VariantOptionValue, 0, len(optionValueIDs))
	for _, id := range optionValueIDs {
		links = append(links, models.VariantOptionValue{VariantID: variantID, OptionValueID: id})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *variantRepository) GetByID(ctx context.Context, id string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("OptionValues", orderedValues).
		Preload("Images").
		First(&variant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) GetBySKU(ctx context.Context, sku string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("OptionValues", orderedValues).
		Preload("Images").
		First(&variant, "sku = ?", sku).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) GetByProductID(ctx context.Context, productID string) ([]models.Variant, error) {
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Preload("OptionValues", orderedValues).
		Where("product_id = ?", productID).
		Order("is_master DESC, position ASC").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) IsSKUExists(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Variant{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountOptionVariants counts the non-master variants of a product, active or not.
func (r *variantRepository) CountOptionVariants(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Variant{}).
		Where("product_id = ? AND is_master = ?", productID, false).
		Count(&count).Error
	return count, err
}

func (r *variantRepository) NextPosition(ctx context.Context, productID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Variant{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *variantRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Variant{}).Where("id = ?", id).
		Updates(map[string]interface{}{"price": price, "updated_at": time.Now()}).Error
}

func (r *variantRepository) UpdateSKU(ctx context.Context, id, sku string) error {
	return r.db.WithContext(ctx).Model(&models.Variant{}).Where("id = ?", id).
		Updates(map[string]interface{}{"sku": sku, "updated_at": time.Now()}).Error
}

// AdjustStock applies delta unless the result would go negative. It reports
// whether a row was changed.
func (r *variantRepository) AdjustStock(ctx context.Context, id string, delta int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Variant{}).
		Where("id = ? AND stock_on_hand + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock_on_hand": gorm.Expr("stock_on_hand + ?", delta),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *variantRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Variant{}).Where("id = ?", id).
		Updates(map[string]interface{}{"deactivated_at": at, "updated_at": time.Now()}).Error
}

func (r *variantRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("variant_id = ?", id).Delete(&models.VariantOptionValue{}).Error; err != nil {
		return err
	}
	if err := db.Where("variant_id = ?", id).Delete(&models.Image{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Variant{}, "id = ?", id).Error
}

func (r *variantRepository) IsReferencedByOrder(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("variant_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
