package services

import (
	"time"

	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name               string          `validate:"required,max=255"`
	Description        string
	AvailableOn        *time.Time
	TaxCategoryID      string          `validate:"required"`
	ShippingCategoryID string          `validate:"required"`
	Price              decimal.Decimal `validate:"gte=0"`
	// MasterSKU is generated from the product name when left blank.
	MasterSKU     string   `validate:"max=100"`
	OptionTypeIDs []string `validate:"unique"`
}

type CreateOptionTypeInput struct {
	Name         string `validate:"required,max=100"`
	Presentation string `validate:"max=100"`
	Position     int    `validate:"gte=0"`
}

type CreateOptionValueInput struct {
	OptionTypeID string `validate:"required"`
	Name         string `validate:"required,max=100"`
	Presentation string `validate:"max=100"`
	Position     int    `validate:"gte=0"`
}

type CreateVariantInput struct {
	ProductID      string   `validate:"required"`
	SKU            string   `validate:"required,max=100"`
	OptionValueIDs []string `validate:"unique"`
	// Price defaults to the product price when nil.
	Price       *decimal.Decimal
	StockOnHand int `validate:"gte=0"`
}

// NewImage is image content stored together with a new product.
type NewImage struct {
	Filename string
	Data     []byte
}

type ProductPage struct {
	Products []models.Product
	Total    int64
	Page     int
	PerPage  int
}
