package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Variant is one purchasable SKU of a product. Every product owns exactly one
// master variant which carries no option values.
type Variant struct {
	ID            string          `gorm:"size:36;not null;uniqueIndex;primary_key"`
	ProductID     string          `gorm:"size:36;not null;index"`
	Product       *Product        `gorm:"foreignKey:ProductID"`
	SKU           string          `gorm:"column:sku;size:100;not null;uniqueIndex"`
	IsMaster      bool            `gorm:"not null;default:false"`
	Price         decimal.Decimal `gorm:"type:decimal(16,2);not null"`
	StockOnHand   int             `gorm:"not null;default:0"`
	Position      int             `gorm:"not null;default:0"`
	OptionValues  []OptionValue   `gorm:"many2many:variant_option_values;"`
	Images        []Image         `gorm:"foreignKey:VariantID"`
	DeactivatedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (v *Variant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

func (v *Variant) Active() bool {
	return v.DeactivatedAt == nil
}

type VariantOptionValue struct {
	VariantID     string `gorm:"size:36;primaryKey"`
	OptionValueID string `gorm:"size:36;primaryKey"`
	CreatedAt     time.Time
}
