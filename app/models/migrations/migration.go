package migrations

import (
	"github.com/Rakhulsr/go-catalog/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Product{}, "OptionTypes", &models.ProductOptionType{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.Variant{}, "OptionValues", &models.VariantOptionValue{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&models.TaxCategory{},
		&models.ShippingCategory{},
		&models.OptionType{},
		&models.OptionValue{},
		&models.Product{},
		&models.Variant{},
		&models.Image{},
		&models.Order{},
		&models.OrderItem{},
	)
}
