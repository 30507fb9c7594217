package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Rakhulsr/go-catalog/app/db/dbtest"
	"github.com/Rakhulsr/go-catalog/app/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, r *Repositories, sku string) (*models.Product, *models.Variant) {
	t.Helper()
	ctx := context.Background()

	tax := &models.TaxCategory{Name: "Default " + sku}
	require.NoError(t, r.TaxCategories.Create(ctx, tax))
	ship := &models.ShippingCategory{Name: "Default " + sku}
	require.NoError(t, r.ShippingCategories.Create(ctx, ship))

	product := &models.Product{
		Name:               "Chest Armour",
		Slug:               "chest-armour-" + sku,
		Price:              decimal.NewFromInt(1599),
		TaxCategoryID:      tax.ID,
		ShippingCategoryID: ship.ID,
	}
	require.NoError(t, r.Products.Create(ctx, product))

	variant := &models.Variant{ProductID: product.ID, SKU: sku, IsMaster: true, Price: product.Price}
	require.NoError(t, r.Variants.Create(ctx, variant))
	return product, variant
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"mysql 1062", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql other", &mysqldriver.MySQLError{Number: 1452, Message: "foreign key"}, false},
		{"postgres text", errors.New(`ERROR: duplicate key value violates unique constraint "idx_variants_sku"`), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestVariantRepository_DuplicateSKUIsUniqueViolation(t *testing.T) {
	r := New(dbtest.Open(t))
	product, _ := seedProduct(t, r, "CHE-00001")

	err := r.Variants.Create(context.Background(), &models.Variant{ProductID: product.ID, SKU: "CHE-00001", Price: product.Price})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), err.Error())
}

func TestVariantRepository_AdjustStockNeverNegative(t *testing.T) {
	r := New(dbtest.Open(t))
	ctx := context.Background()
	_, variant := seedProduct(t, r, "CHE-00001")

	ok, err := r.Variants.AdjustStock(ctx, variant.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Variants.AdjustStock(ctx, variant.ID, -4)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Variants.AdjustStock(ctx, variant.ID, -3)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.Variants.GetByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockOnHand)
}

func TestVariantRepository_NotFoundIsNil(t *testing.T) {
	r := New(dbtest.Open(t))
	ctx := context.Background()

	v, err := r.Variants.GetBySKU(ctx, "NOPE")
	assert.NoError(t, err)
	assert.Nil(t, v)

	p, err := r.Products.GetBySlug(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestVariantRepository_ReferencedByOrder(t *testing.T) {
	r := New(dbtest.Open(t))
	ctx := context.Background()
	_, variant := seedProduct(t, r, "CHE-00001")

	referenced, err := r.Variants.IsReferencedByOrder(ctx, variant.ID)
	require.NoError(t, err)
	assert.False(t, referenced)

	order := &models.Order{
		Code:     "R-100",
		PlacedAt: time.Now().UTC(),
		OrderItems: []models.OrderItem{
			{VariantID: variant.ID, SKU: variant.SKU, Qty: 1, Price: variant.Price},
		},
	}
	require.NoError(t, r.Orders.Create(ctx, order))

	referenced, err = r.Variants.IsReferencedByOrder(ctx, variant.ID)
	require.NoError(t, err)
	assert.True(t, referenced)
}

func TestOrderRepository_MarkCancelledOnce(t *testing.T) {
	r := New(dbtest.Open(t))
	ctx := context.Background()

	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := &models.Order{Code: "R-100", PlacedAt: placed, Status: models.OrderStatusPending}
	require.NoError(t, r.Orders.Create(ctx, order))

	first := placed.Add(time.Hour)
	require.NoError(t, r.Orders.MarkCancelled(ctx, order.ID, first))
	require.NoError(t, r.Orders.MarkCancelled(ctx, order.ID, first.Add(time.Hour)))

	got, err := r.Orders.FindByCode(ctx, "R-100")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.Equal(first))
}
