package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Rakhulsr/go-catalog/app/helpers"
	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/Rakhulsr/go-catalog/app/repositories"
	"github.com/Rakhulsr/go-catalog/app/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultPerPage = 20

type CatalogService struct {
	db        *gorm.DB
	assets    storage.AssetStore
	validator *validator.Validate
	now       func() time.Time
}

func NewCatalogService(db *gorm.DB, assets storage.AssetStore) *CatalogService {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &CatalogService{
		db:        db,
		assets:    assets,
		validator: v,
		now:       time.Now,
	}
}

// inTx runs fn with every repository bound to one transaction. Any error
// returned by fn rolls the whole transaction back.
func (s *CatalogService) inTx(ctx context.Context, fn func(r *repositories.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repositories.New(tx))
	})
}

func (s *CatalogService) repos(ctx context.Context) *repositories.Repositories {
	return repositories.New(s.db.WithContext(ctx))
}

func (s *CatalogService) validateStruct(v interface{}) error {
	if err := s.validator.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: helpers.FormatValidationErrors(verrs)}
		}
		return err
	}
	return nil
}

// findOrCreate returns the row found by find, creating it when missing. A
// unique-index race with a concurrent creator is resolved by reading the
// winner's row outside the failed transaction.
func findOrCreate[T any](ctx context.Context, s *CatalogService, op string,
	find func(r *repositories.Repositories) (*T, error),
	create func(r *repositories.Repositories) (*T, error),
) (*T, error) {
	var out *T
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		existing, err := find(r)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}
		created, err := create(r)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err == nil {
		return out, nil
	}
	if !repositories.IsUniqueViolation(err) {
		return nil, storageErr(op, err)
	}

	log.Debug().Str("op", op).Msg("lost create race, re-reading existing row")
	existing, ferr := find(s.repos(ctx))
	if ferr != nil {
		return nil, storageErr(op, ferr)
	}
	if existing == nil {
		return nil, storageErr(op, err)
	}
	return existing, nil
}

func (s *CatalogService) CreateTaxCategory(ctx context.Context, name string) (*models.TaxCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "Name is required.")
	}
	return findOrCreate(ctx, s, "create tax category",
		func(r *repositories.Repositories) (*models.TaxCategory, error) {
			return r.TaxCategories.GetByName(ctx, name)
		},
		func(r *repositories.Repositories) (*models.TaxCategory, error) {
			category := &models.TaxCategory{Name: name}
			if err := r.TaxCategories.Create(ctx, category); err != nil {
				return nil, err
			}
			log.Info().Str("name", name).Msg("tax category created")
			return category, nil
		})
}

func (s *CatalogService) CreateShippingCategory(ctx context.Context, name string) (*models.ShippingCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "Name is required.")
	}
	return findOrCreate(ctx, s, "create shipping category",
		func(r *repositories.Repositories) (*models.ShippingCategory, error) {
			return r.ShippingCategories.GetByName(ctx, name)
		},
		func(r *repositories.Repositories) (*models.ShippingCategory, error) {
			category := &models.ShippingCategory{Name: name}
			if err := r.ShippingCategories.Create(ctx, category); err != nil {
				return nil, err
			}
			log.Info().Str("name", name).Msg("shipping category created")
			return category, nil
		})
}

func (s *CatalogService) CreateOptionType(ctx context.Context, in CreateOptionTypeInput) (*models.OptionType, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Presentation = strings.TrimSpace(in.Presentation)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if in.Presentation == "" {
		in.Presentation = in.Name
	}

	optionType := &models.OptionType{Name: in.Name, Presentation: in.Presentation, Position: in.Position}
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		existing, err := r.OptionTypes.GetByName(ctx, in.Name)
		if err != nil {
			return storageErr("load option type", err)
		}
		if existing != nil {
			return newValidationError("name", fmt.Sprintf("Option type %q already exists.", in.Name))
		}
		if err := r.OptionTypes.Create(ctx, optionType); err != nil {
			if repositories.IsUniqueViolation(err) {
				return newValidationError("name", fmt.Sprintf("Option type %q already exists.", in.Name))
			}
			return storageErr("create option type", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("name", optionType.Name).Msg("option type created")
	return optionType, nil
}

func (s *CatalogService) CreateOptionValue(ctx context.Context, in CreateOptionValueInput) (*models.OptionValue, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Presentation = strings.TrimSpace(in.Presentation)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if in.Presentation == "" {
		in.Presentation = in.Name
	}

	value := &models.OptionValue{
		OptionTypeID: in.OptionTypeID,
		Name:         in.Name,
		Presentation: in.Presentation,
		Position:     in.Position,
	}
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		optionType, err := r.OptionTypes.GetByID(ctx, in.OptionTypeID)
		if err != nil {
			return storageErr("load option type", err)
		}
		if optionType == nil {
			return fmt.Errorf("%w: option type %q does not exist", ErrInvalidReference, in.OptionTypeID)
		}

		nameTaken, positionTaken, err := r.OptionTypes.ValueExists(ctx, in.OptionTypeID, in.Name, in.Position)
		if err != nil {
			return storageErr("check option value", err)
		}
		if nameTaken || positionTaken {
			verr := &ValidationError{Fields: map[string]string{}}
			if nameTaken {
				verr.Fields["name"] = fmt.Sprintf("%s already has a value named %q.", optionType.Name, in.Name)
			}
			if positionTaken {
				verr.Fields["position"] = fmt.Sprintf("%s already has a value at position %d.", optionType.Name, in.Position)
			}
			return verr
		}

		if err := r.OptionTypes.CreateValue(ctx, value); err != nil {
			if repositories.IsUniqueViolation(err) {
				return newValidationError("position", fmt.Sprintf("%s already has a value named %q or at position %d.", optionType.Name, in.Name, in.Position))
			}
			return storageErr("create option value", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *CatalogService) GetOptionTypeByName(ctx context.Context, name string) (*models.OptionType, error) {
	optionType, err := s.repos(ctx).OptionTypes.GetByName(ctx, name)
	if err != nil {
		return nil, storageErr("load option type", err)
	}
	if optionType == nil {
		return nil, fmt.Errorf("%w: option type %q", ErrNotFound, name)
	}
	return optionType, nil
}

func (s *CatalogService) ListOptionTypes(ctx context.Context) ([]models.OptionType, error) {
	optionTypes, err := s.repos(ctx).OptionTypes.GetAll(ctx)
	if err != nil {
		return nil, storageErr("list option types", err)
	}
	return optionTypes, nil
}

func (s *CatalogService) ListTaxCategories(ctx context.Context) ([]models.TaxCategory, error) {
	categories, err := s.repos(ctx).TaxCategories.GetAll(ctx)
	if err != nil {
		return nil, storageErr("list tax categories", err)
	}
	return categories, nil
}

func (s *CatalogService) ListShippingCategories(ctx context.Context) ([]models.ShippingCategory, error) {
	categories, err := s.repos(ctx).ShippingCategories.GetAll(ctx)
	if err != nil {
		return nil, storageErr("list shipping categories", err)
	}
	return categories, nil
}

// CreateProduct creates the product together with its master variant.
func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	return s.CreateProductWithVariants(ctx, in, nil, nil)
}

// CreateProductWithVariants creates a product, its master, the given option
// variants and the master's images as one unit. ProductID on the variant
// inputs is ignored and set to the new product. Images are checked before
// anything is written, and stored assets are removed again when the
// transaction rolls back.
func (s *CatalogService) CreateProductWithVariants(ctx context.Context, in CreateProductInput, variants []CreateVariantInput, images []NewImage) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.MasterSKU = strings.TrimSpace(in.MasterSKU)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	checked := make([]checkedImage, 0, len(images))
	for _, img := range images {
		c, err := checkImage(img.Data, img.Filename)
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", img.Filename, err)
		}
		checked = append(checked, c)
	}
	if len(checked) > 0 && s.assets == nil {
		return nil, &StorageError{Op: "store image", Err: fmt.Errorf("no asset store configured")}
	}

	var productID string
	var storedKeys []string
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		product, master, err := createProduct(ctx, r, in)
		if err != nil {
			return err
		}
		for i, v := range variants {
			v.ProductID = product.ID
			if _, err := s.createVariant(ctx, r, v); err != nil {
				return &BulkEntryError{Index: i, SKU: strings.TrimSpace(v.SKU), Err: err}
			}
		}
		for _, img := range checked {
			if _, err := s.storeImage(ctx, r, master.ID, img, &storedKeys); err != nil {
				return fmt.Errorf("image %s: %w", img.filename, err)
			}
		}
		productID = product.ID
		return nil
	})
	if err != nil {
		s.discardAssets(ctx, storedKeys)
		return nil, err
	}

	log.Info().Str("product_id", productID).Str("name", in.Name).Int("variants", len(variants)).Int("images", len(images)).Msg("product created")
	return s.GetProduct(ctx, productID)
}

func createProduct(ctx context.Context, r *repositories.Repositories, in CreateProductInput) (*models.Product, *models.Variant, error) {
	taxCategory, err := r.TaxCategories.GetByID(ctx, in.TaxCategoryID)
	if err != nil {
		return nil, nil, storageErr("load tax category", err)
	}
	if taxCategory == nil {
		return nil, nil, fmt.Errorf("%w: tax category %q does not exist", ErrInvalidReference, in.TaxCategoryID)
	}
	shippingCategory, err := r.ShippingCategories.GetByID(ctx, in.ShippingCategoryID)
	if err != nil {
		return nil, nil, storageErr("load shipping category", err)
	}
	if shippingCategory == nil {
		return nil, nil, fmt.Errorf("%w: shipping category %q does not exist", ErrInvalidReference, in.ShippingCategoryID)
	}

	slug, err := uniqueSlug(ctx, r, in.Name)
	if err != nil {
		return nil, nil, err
	}

	sku := in.MasterSKU
	if sku == "" {
		sku = helpers.SKUPrefix(in.Name) + "-" + strings.ToUpper(uuid.NewString()[:8])
	}
	exists, err := r.Variants.IsSKUExists(ctx, sku)
	if err != nil {
		return nil, nil, storageErr("check sku", err)
	}
	if exists {
		return nil, nil, &DuplicateSKUError{SKU: sku}
	}

	product := &models.Product{
		Name:               in.Name,
		Slug:               slug,
		Description:        in.Description,
		AvailableOn:        utcPtr(in.AvailableOn),
		Price:              in.Price,
		TaxCategoryID:      taxCategory.ID,
		ShippingCategoryID: shippingCategory.ID,
	}
	if err := r.Products.Create(ctx, product); err != nil {
		return nil, nil, storageErr("create product", err)
	}

	master := &models.Variant{
		ProductID: product.ID,
		SKU:       sku,
		IsMaster:  true,
		Price:     in.Price,
	}
	if err := r.Variants.Create(ctx, master); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, nil, &DuplicateSKUError{SKU: sku}
		}
		return nil, nil, storageErr("create master variant", err)
	}

	if len(in.OptionTypeIDs) > 0 {
		if err := assignOptionTypes(ctx, r, product.ID, in.OptionTypeIDs); err != nil {
			return nil, nil, err
		}
	}
	return product, master, nil
}

func uniqueSlug(ctx context.Context, r *repositories.Repositories, name string) (string, error) {
	base := helpers.GenerateSlug(name)
	if base == "" {
		base = "product"
	}
	exists, err := r.Products.SlugExists(ctx, base)
	if err != nil {
		return "", storageErr("check slug", err)
	}
	if !exists {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// AssignOptionTypes adds option types to a product. Adding an axis is
// rejected once the product has non-master variants, since none of them can
// carry a value for the new axis.
func (s *CatalogService) AssignOptionTypes(ctx context.Context, productID string, optionTypeIDs []string) (*models.Product, error) {
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		product, err := r.Products.FindByID(ctx, productID)
		if err != nil {
			return storageErr("load product", err)
		}
		if product == nil {
			return fmt.Errorf("%w: product %q does not exist", ErrInvalidReference, productID)
		}
		return assignOptionTypes(ctx, r, productID, optionTypeIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

func assignOptionTypes(ctx context.Context, r *repositories.Repositories, productID string, optionTypeIDs []string) error {
	current, err := r.Products.GetOptionTypeIDs(ctx, productID)
	if err != nil {
		return storageErr("load product option types", err)
	}
	assigned := make(map[string]bool, len(current))
	for _, id := range current {
		assigned[id] = true
	}

	var added []string
	for _, id := range optionTypeIDs {
		if assigned[id] {
			continue
		}
		optionType, err := r.OptionTypes.GetByID(ctx, id)
		if err != nil {
			return storageErr("load option type", err)
		}
		if optionType == nil {
			return fmt.Errorf("%w: option type %q does not exist", ErrInvalidReference, id)
		}
		assigned[id] = true
		added = append(added, id)
	}
	if len(added) == 0 {
		return nil
	}

	count, err := r.Variants.CountOptionVariants(ctx, productID)
	if err != nil {
		return storageErr("count variants", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: product %q already has %d variants that do not cover the new option types", ErrInvalidState, productID, count)
	}

	links := make([]models.ProductOptionType, 0, len(added))
	for i, id := range added {
		links = append(links, models.ProductOptionType{
			ProductID:    productID,
			OptionTypeID: id,
			Position:     len(current) + i,
		})
	}
	if err := r.Products.AddOptionTypes(ctx, links); err != nil {
		return storageErr("assign option types", err)
	}
	return nil
}

func (s *CatalogService) CreateVariant(ctx context.Context, in CreateVariantInput) (*models.Variant, error) {
	var variantID string
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		variant, err := s.createVariant(ctx, r, in)
		if err != nil {
			return err
		}
		variantID = variant.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetVariant(ctx, variantID)
}

// BulkCreateVariants creates every entry or none of them.
func (s *CatalogService) BulkCreateVariants(ctx context.Context, inputs []CreateVariantInput) ([]models.Variant, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(inputs))
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		for i, in := range inputs {
			variant, err := s.createVariant(ctx, r, in)
			if err != nil {
				return &BulkEntryError{Index: i, SKU: strings.TrimSpace(in.SKU), Err: err}
			}
			ids = append(ids, variant.ID)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("entries", len(inputs)).Msg("bulk variant creation rolled back")
		return nil, err
	}

	variants := make([]models.Variant, 0, len(ids))
	for _, id := range ids {
		variant, err := s.GetVariant(ctx, id)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *variant)
	}
	log.Info().Int("count", len(variants)).Msg("variants created")
	return variants, nil
}

// createVariant checks a variant against its product and inserts it. The
// option values must name exactly one value for each option type assigned
// to the product and nothing else.
func (s *CatalogService) createVariant(ctx context.Context, r *repositories.Repositories, in CreateVariantInput) (*models.Variant, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, newValidationError("price", "Price must not be negative.")
	}

	product, err := r.Products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, storageErr("load product", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %q does not exist", ErrInvalidReference, in.ProductID)
	}

	assignedIDs, err := r.Products.GetOptionTypeIDs(ctx, product.ID)
	if err != nil {
		return nil, storageErr("load product option types", err)
	}
	assigned := make(map[string]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}

	values, err := r.OptionTypes.GetValuesByIDs(ctx, in.OptionValueIDs)
	if err != nil {
		return nil, storageErr("load option values", err)
	}
	found := make(map[string]bool, len(values))
	for _, v := range values {
		found[v.ID] = true
	}
	for _, id := range in.OptionValueIDs {
		if !found[id] {
			return nil, fmt.Errorf("%w: option value %q does not exist", ErrInvalidReference, id)
		}
	}

	covered := make(map[string]int, len(values))
	for _, v := range values {
		if !assigned[v.OptionTypeID] {
			return nil, fmt.Errorf("%w: option value %q belongs to option type %q, which is not assigned to product %q",
				ErrInvalidReference, v.Name, optionTypeName(ctx, r, v.OptionTypeID), product.Name)
		}
		covered[v.OptionTypeID]++
	}
	for _, typeID := range assignedIDs {
		switch n := covered[typeID]; {
		case n == 0:
			return nil, fmt.Errorf("%w: sku %q has no value for option type %q", ErrIncompleteOptions, in.SKU, optionTypeName(ctx, r, typeID))
		case n > 1:
			return nil, fmt.Errorf("%w: sku %q has %d values for option type %q", ErrIncompleteOptions, in.SKU, n, optionTypeName(ctx, r, typeID))
		}
	}

	exists, err := r.Variants.IsSKUExists(ctx, in.SKU)
	if err != nil {
		return nil, storageErr("check sku", err)
	}
	if exists {
		return nil, &DuplicateSKUError{SKU: in.SKU}
	}

	position, err := r.Variants.NextPosition(ctx, product.ID)
	if err != nil {
		return nil, storageErr("variant position", err)
	}

	price := product.Price
	if in.Price != nil {
		price = *in.Price
	}
	variant := &models.Variant{
		ProductID:   product.ID,
		SKU:         in.SKU,
		Price:       price,
		StockOnHand: in.StockOnHand,
		Position:    position,
	}
	if err := r.Variants.Create(ctx, variant); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, &DuplicateSKUError{SKU: in.SKU}
		}
		return nil, storageErr("create variant", err)
	}
	if err := r.Variants.LinkOptionValues(ctx, variant.ID, in.OptionValueIDs); err != nil {
		return nil, storageErr("link option values", err)
	}
	return variant, nil
}

// optionTypeName is for error messages only and falls back to the id.
func optionTypeName(ctx context.Context, r *repositories.Repositories, id string) string {
	optionType, err := r.OptionTypes.GetByID(ctx, id)
	if err != nil || optionType == nil {
		return id
	}
	return optionType.Name
}

func (s *CatalogService) GetVariant(ctx context.Context, id string) (*models.Variant, error) {
	variant, err := s.repos(ctx).Variants.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("load variant", err)
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: variant %q", ErrNotFound, id)
	}
	return variant, nil
}

func (s *CatalogService) FindVariantBySKU(ctx context.Context, sku string) (*models.Variant, error) {
	variant, err := s.repos(ctx).Variants.GetBySKU(ctx, sku)
	if err != nil {
		return nil, storageErr("load variant", err)
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: sku %q", ErrNotFound, sku)
	}
	return variant, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repos(ctx).Products.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("load product", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, id)
	}
	return product, nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repos(ctx).Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, storageErr("load product", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, slug)
	}
	return product, nil
}

func paging(page, perPage int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage, (page - 1) * perPage
}

func (s *CatalogService) ListProducts(ctx context.Context, page, perPage int) (*ProductPage, error) {
	page, perPage, offset := paging(page, perPage)
	products, total, err := s.repos(ctx).Products.GetPaginated(ctx, perPage, offset)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return &ProductPage{Products: products, Total: total, Page: page, PerPage: perPage}, nil
}

// ListAvailableProducts lists what the storefront may show right now.
func (s *CatalogService) ListAvailableProducts(ctx context.Context, page, perPage int) (*ProductPage, error) {
	page, perPage, offset := paging(page, perPage)
	products, total, err := s.repos(ctx).Products.GetAvailablePaginated(ctx, s.now().UTC(), perPage, offset)
	if err != nil {
		return nil, storageErr("list available products", err)
	}
	return &ProductPage{Products: products, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, keyword string, page, perPage int) (*ProductPage, error) {
	page, perPage, offset := paging(page, perPage)
	products, total, err := s.repos(ctx).Products.SearchProductsPaginated(ctx, strings.TrimSpace(keyword), perPage, offset)
	if err != nil {
		return nil, storageErr("search products", err)
	}
	return &ProductPage{Products: products, Total: total, Page: page, PerPage: perPage}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
