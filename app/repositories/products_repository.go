package repositories

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepositoryImpl interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetPaginated(ctx context.Context, limit, offset int) ([]models.Product, int64, error)
	GetAvailablePaginated(ctx context.Context, at time.Time, limit, offset int) ([]models.Product, int64, error)
	SearchProductsPaginated(ctx context.Context, keyword string, limit, offset int) ([]models.Product, int64, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
	SetAvailableOn(ctx context.Context, id string, availableOn *time.Time) error
	GetOptionTypeIDs(ctx context.Context, productID string) ([]string, error)
	AddOptionTypes(ctx context.Context, links []models.ProductOptionType) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

// likeEscaper makes LIKE wildcards in a search keyword literal. "!" is the
// escape character since backslash handling differs between dialects.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// preloadCatalog loads everything the storefront renders for a product.
func preloadCatalog(db *gorm.DB) *gorm.DB {
	return db.
		Preload("TaxCategory").
		Preload("ShippingCategory").
		Preload("OptionTypes").
		Preload("OptionTypes.OptionValues", orderedValues).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("variants.is_master DESC, variants.position ASC, variants.sku ASC")
		}).
		Preload("Variants.OptionValues", orderedValues).
		Preload("Variants.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.position ASC")
		})
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (p *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := preloadCatalog(p.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := p.sortOptionTypes(ctx, []models.Product{product}); err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByID loads the product row alone, without relations.
func (p *productRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := preloadCatalog(p.db.WithContext(ctx)).
		Where("slug = ?", slug).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := p.sortOptionTypes(ctx, []models.Product{product}); err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := p.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *productRepository) GetPaginated(ctx context.Context, limit, offset int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if err := p.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := preloadCatalog(p.db.WithContext(ctx)).
		Order("created_at DESC, name ASC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, p.sortOptionTypes(ctx, products)
}

func (p *productRepository) GetAvailablePaginated(ctx context.Context, at time.Time, limit, offset int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if err := p.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("available_on IS NOT NULL AND available_on <= ?", at).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := preloadCatalog(p.db.WithContext(ctx)).
		Where("available_on IS NOT NULL AND available_on <= ?", at).
		Order("available_on DESC, name ASC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, p.sortOptionTypes(ctx, products)
}

func (p *productRepository) SearchProductsPaginated(ctx context.Context, keyword string, limit, offset int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64
	searchKeyword := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"

	if err := p.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", searchKeyword, searchKeyword).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := preloadCatalog(p.db.WithContext(ctx)).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", searchKeyword, searchKeyword).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, p.sortOptionTypes(ctx, products)
}

func (p *productRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	return p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{"price": price, "updated_at": time.Now()}).Error
}

func (p *productRepository) SetAvailableOn(ctx context.Context, id string, availableOn *time.Time) error {
	return p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{"available_on": availableOn, "updated_at": time.Now()}).Error
}

func (p *productRepository) GetOptionTypeIDs(ctx context.Context, productID string) ([]string, error) {
	var ids []string
	err := p.db.WithContext(ctx).Model(&models.ProductOptionType{}).
		Where("product_id = ?", productID).
		Order("position ASC").
		Pluck("option_type_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (p *productRepository) AddOptionTypes(ctx context.Context, links []models.ProductOptionType) error {
	if len(links) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).Create(&links).Error
}

// sortOptionTypes orders each product's option types by their position on
// that product. The many2many preload cannot order through the join table.
func (p *productRepository) sortOptionTypes(ctx context.Context, products []models.Product) error {
	ids := make([]string, 0, len(products))
	for _, product := range products {
		if len(product.OptionTypes) > 1 {
			ids = append(ids, product.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var links []models.ProductOptionType
	if err := p.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&links).Error; err != nil {
		return err
	}
	position := make(map[[2]string]int, len(links))
	for _, l := range links {
		position[[2]string{l.ProductID, l.OptionTypeID}] = l.Position
	}

	for i := range products {
		productID := products[i].ID
		sort.SliceStable(products[i].OptionTypes, func(a, b int) bool {
			return position[[2]string{productID, products[i].OptionTypes[a].ID}] <
				position[[2]string{productID, products[i].OptionTypes[b].ID}]
		})
	}
	return nil
}
