package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                 string            `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Name               string            `gorm:"size:255;not null"`
	Slug               string            `gorm:"size:255;not null;uniqueIndex"`
	Description        string            `gorm:"type:text"`
	AvailableOn        *time.Time        `gorm:"index"`
	Price              decimal.Decimal   `gorm:"type:decimal(16,2);not null"`
	TaxCategoryID      string            `gorm:"size:36;not null;index"`
	TaxCategory        *TaxCategory      `gorm:"foreignKey:TaxCategoryID"`
	ShippingCategoryID string            `gorm:"size:36;not null;index"`
	ShippingCategory   *ShippingCategory `gorm:"foreignKey:ShippingCategoryID"`
	OptionTypes        []OptionType      `gorm:"many2many:product_option_types;"`
	Variants           []Variant         `gorm:"foreignKey:ProductID"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// Available reports whether the product can be shown on the storefront at t.
func (p *Product) Available(t time.Time) bool {
	return p.AvailableOn != nil && !p.AvailableOn.After(t)
}

// Master returns the loaded master variant, or nil when Variants was not preloaded.
func (p *Product) Master() *Variant {
	for i := range p.Variants {
		if p.Variants[i].IsMaster {
			return &p.Variants[i]
		}
	}
	return nil
}

type ProductOptionType struct {
	ProductID    string `gorm:"size:36;primaryKey"`
	OptionTypeID string `gorm:"size:36;primaryKey"`
	Position     int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
}
