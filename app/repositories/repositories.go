package repositories

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Repositories bundles every catalog repository over one handle, so a service
// can rebind all of them to a transaction with New(tx).
type Repositories struct {
	TaxCategories      TaxCategoryRepositoryImpl
	ShippingCategories ShippingCategoryRepositoryImpl
	OptionTypes        OptionTypeRepositoryImpl
	Products           ProductRepositoryImpl
	Variants           VariantRepositoryImpl
	Images             ImageRepositoryImpl
	Orders             OrderRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		TaxCategories:      NewTaxCategoryRepository(db),
		ShippingCategories: NewShippingCategoryRepository(db),
		OptionTypes:        NewOptionTypeRepository(db),
		Products:           NewProductRepository(db),
		Variants:           NewVariantRepository(db),
		Images:             NewImageRepository(db),
		Orders:             NewOrderRepository(db),
	}
}

const mysqlDuplicateEntry = 1062

// IsUniqueViolation reports whether err came from a unique index rejecting a write.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
