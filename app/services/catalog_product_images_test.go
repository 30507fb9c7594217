package services

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/Rakhulsr/go-catalog/app/db/dbtest"
	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/Rakhulsr/go-catalog/app/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every Put after the first okPuts.
type flakyStore struct {
	*storage.LocalStore
	okPuts int
	puts   int
}

func (s *flakyStore) Put(ctx context.Context, key string, data []byte) error {
	s.puts++
	if s.puts > s.okPuts {
		return storage.ErrUnavailable
	}
	return s.LocalStore.Put(ctx, key, data)
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func shieldInput(t *testing.T, svc *CatalogService) CreateProductInput {
	t.Helper()
	ctx := context.Background()
	tax, err := svc.CreateTaxCategory(ctx, "Default")
	require.NoError(t, err)
	ship, err := svc.CreateShippingCategory(ctx, "Default")
	require.NoError(t, err)
	return CreateProductInput{
		Name:               "Wooden Shield",
		TaxCategoryID:      tax.ID,
		ShippingCategoryID: ship.ID,
		Price:              decimal.NewFromInt(149),
		MasterSKU:          "SHI-00001",
	}
}

func TestCreateProductWithVariantsStoresImages(t *testing.T) {
	svc, db, assetDir := setupCatalog(t)

	product, err := svc.CreateProductWithVariants(context.Background(), shieldInput(t, svc), nil, []NewImage{
		{Filename: "front.png", Data: pngHeader},
		{Filename: "back.png", Data: pngHeader},
	})
	require.NoError(t, err)

	master := product.Master()
	require.NotNil(t, master)
	require.Len(t, master.Images, 2)
	assert.Equal(t, "front.png", master.Images[0].Filename)
	assert.Equal(t, 1, master.Images[1].Position)
	assert.Equal(t, 2, countFiles(t, assetDir))
	assert.EqualValues(t, 2, countRows(t, db, &models.Image{}))
}

func TestCreateProductWithVariantsRejectsBadImageFirst(t *testing.T) {
	svc, db, assetDir := setupCatalog(t)

	_, err := svc.CreateProductWithVariants(context.Background(), shieldInput(t, svc), nil, []NewImage{
		{Filename: "front.png", Data: pngHeader},
		{Filename: "notes.txt", Data: []byte("plain text")},
	})
	require.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, countRows(t, db, &models.Product{}))
	assert.Zero(t, countRows(t, db, &models.Variant{}))
	assert.Zero(t, countFiles(t, assetDir))
}

func TestCreateProductWithVariantsRollsBackStoredAssets(t *testing.T) {
	db := dbtest.Open(t)
	assetDir := t.TempDir()
	store := &flakyStore{LocalStore: storage.NewLocalStore(assetDir), okPuts: 1}
	svc := NewCatalogService(db, store)

	_, err := svc.CreateProductWithVariants(context.Background(), shieldInput(t, svc), nil, []NewImage{
		{Filename: "front.png", Data: pngHeader},
		{Filename: "back.png", Data: pngHeader},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorage), err.Error())
	assert.Equal(t, 2, store.puts)

	assert.Zero(t, countRows(t, db, &models.Product{}))
	assert.Zero(t, countRows(t, db, &models.Image{}))
	assert.Zero(t, countFiles(t, assetDir), "the first asset is removed on rollback")
}

func TestProductOptionTypesFollowAssignmentOrder(t *testing.T) {
	svc, _, _ := setupCatalog(t)
	ctx := context.Background()
	in := shieldInput(t, svc)

	// global positions deliberately disagree with the assignment order
	colour, err := svc.CreateOptionType(ctx, CreateOptionTypeInput{Name: "shield-colour", Presentation: "Colour", Position: 1})
	require.NoError(t, err)
	size, err := svc.CreateOptionType(ctx, CreateOptionTypeInput{Name: "shield-size", Presentation: "Size", Position: 2})
	require.NoError(t, err)

	in.OptionTypeIDs = []string{size.ID, colour.ID}
	product, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)
	require.Len(t, product.OptionTypes, 2)
	assert.Equal(t, "shield-size", product.OptionTypes[0].Name)
	assert.Equal(t, "shield-colour", product.OptionTypes[1].Name)

	page, err := svc.ListProducts(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "shield-size", page.Products[0].OptionTypes[0].Name)
}
