package seeders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rakhulsr/go-catalog/app/helpers"
	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/Rakhulsr/go-catalog/app/services"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Manifest is the declarative catalog read by ImportManifest.
type Manifest struct {
	TaxCategories      []string         `yaml:"tax_categories"`
	ShippingCategories []string         `yaml:"shipping_categories"`
	OptionTypes        []OptionTypeSpec `yaml:"option_types"`
	Products           []ProductSpec    `yaml:"products"`
	// BaseDir resolves relative image paths. LoadManifest sets it to the
	// manifest's directory.
	BaseDir string `yaml:"-"`
}

type OptionTypeSpec struct {
	Name         string            `yaml:"name"`
	Presentation string            `yaml:"presentation"`
	Position     int               `yaml:"position"`
	Values       []OptionValueSpec `yaml:"values"`
}

type OptionValueSpec struct {
	Name         string `yaml:"name"`
	Presentation string `yaml:"presentation"`
	Position     int    `yaml:"position"`
}

type ProductSpec struct {
	Name             string        `yaml:"name"`
	Description      string        `yaml:"description"`
	Price            string        `yaml:"price"`
	SKU              string        `yaml:"sku"`
	TaxCategory      string        `yaml:"tax_category"`
	ShippingCategory string        `yaml:"shipping_category"`
	AvailableOn      *time.Time    `yaml:"available_on"`
	OptionTypes      []string      `yaml:"option_types"`
	Variants         []VariantSpec `yaml:"variants"`
	Images           []string      `yaml:"images"`
}

type VariantSpec struct {
	SKU   string `yaml:"sku"`
	Price string `yaml:"price"`
	Stock int    `yaml:"stock"`
	// Options maps an option type name to the value name.
	Options map[string]string `yaml:"options"`
}

// ImportResult counts what an import created and skipped.
type ImportResult struct {
	Created  int
	Skipped  int
	Variants int
	Images   int
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.BaseDir = filepath.Dir(path)
	return m, nil
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// ImportManifest applies the manifest through the catalog service.
// Categories and option types are found or created. A product whose master
// SKU, or slug when no SKU is given, already exists is skipped, so running
// the same manifest twice is harmless. Each product is created together with
// its variants and images as one unit, so a failed product leaves nothing
// behind and is retried on the next run.
func ImportManifest(ctx context.Context, svc *services.CatalogService, m *Manifest) (*ImportResult, error) {
	taxes := map[string]string{}
	for _, name := range m.TaxCategories {
		c, err := svc.CreateTaxCategory(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("tax category %q: %w", name, err)
		}
		taxes[c.Name] = c.ID
	}
	shippings := map[string]string{}
	for _, name := range m.ShippingCategories {
		c, err := svc.CreateShippingCategory(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("shipping category %q: %w", name, err)
		}
		shippings[c.Name] = c.ID
	}

	options := map[string]*models.OptionType{}
	for _, spec := range m.OptionTypes {
		ot, err := ensureOptionType(ctx, svc, spec)
		if err != nil {
			return nil, fmt.Errorf("option type %q: %w", spec.Name, err)
		}
		options[ot.Name] = ot
	}

	res := &ImportResult{}
	for i, spec := range m.Products {
		skip, err := productExists(ctx, svc, spec)
		if err != nil {
			return res, fmt.Errorf("product %d (%s): %w", i, spec.Name, err)
		}
		if skip {
			log.Debug().Str("product", spec.Name).Msg("product already imported, skipping")
			res.Skipped++
			continue
		}

		if _, err := importProduct(ctx, svc, spec, m.BaseDir, taxes, shippings, options); err != nil {
			return res, fmt.Errorf("product %d (%s): %w", i, spec.Name, err)
		}
		res.Created++
		res.Variants += len(spec.Variants)
		res.Images += len(spec.Images)
	}

	log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Int("variants", res.Variants).Msg("manifest imported")
	return res, nil
}

func ensureOptionType(ctx context.Context, svc *services.CatalogService, spec OptionTypeSpec) (*models.OptionType, error) {
	ot, err := svc.GetOptionTypeByName(ctx, spec.Name)
	if errors.Is(err, services.ErrNotFound) {
		ot, err = svc.CreateOptionType(ctx, services.CreateOptionTypeInput{
			Name:         spec.Name,
			Presentation: spec.Presentation,
			Position:     spec.Position,
		})
	}
	if err != nil {
		return nil, err
	}

	existing := map[string]bool{}
	for _, v := range ot.OptionValues {
		existing[v.Name] = true
	}
	for _, v := range spec.Values {
		if existing[v.Name] {
			continue
		}
		value, err := svc.CreateOptionValue(ctx, services.CreateOptionValueInput{
			OptionTypeID: ot.ID,
			Name:         v.Name,
			Presentation: v.Presentation,
			Position:     v.Position,
		})
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", v.Name, err)
		}
		ot.OptionValues = append(ot.OptionValues, *value)
	}
	return ot, nil
}

func productExists(ctx context.Context, svc *services.CatalogService, spec ProductSpec) (bool, error) {
	var err error
	if sku := strings.TrimSpace(spec.SKU); sku != "" {
		_, err = svc.FindVariantBySKU(ctx, sku)
	} else {
		var product *models.Product
		product, err = svc.GetProductBySlug(ctx, helpers.GenerateSlug(spec.Name))
		if err == nil && product.Name != strings.TrimSpace(spec.Name) {
			log.Warn().Str("product", spec.Name).Str("existing", product.Name).Str("slug", product.Slug).
				Msg("product without sku matches an existing product by slug only, skipping")
		}
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, services.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func importProduct(ctx context.Context, svc *services.CatalogService, spec ProductSpec, baseDir string,
	taxes, shippings map[string]string, options map[string]*models.OptionType,
) (*models.Product, error) {
	price, err := parsePrice(spec.Price)
	if err != nil {
		return nil, err
	}
	images, err := readImages(baseDir, spec.Images)
	if err != nil {
		return nil, err
	}

	in := services.CreateProductInput{
		Name:               spec.Name,
		Description:        spec.Description,
		AvailableOn:        spec.AvailableOn,
		TaxCategoryID:      lookupCategory(taxes, spec.TaxCategory),
		ShippingCategoryID: lookupCategory(shippings, spec.ShippingCategory),
		Price:              price,
		MasterSKU:          spec.SKU,
	}
	for _, name := range spec.OptionTypes {
		ot, ok := options[name]
		if !ok {
			return nil, fmt.Errorf("%w: option type %q is not declared in the manifest", services.ErrInvalidReference, name)
		}
		in.OptionTypeIDs = append(in.OptionTypeIDs, ot.ID)
	}

	variants := make([]services.CreateVariantInput, 0, len(spec.Variants))
	for _, v := range spec.Variants {
		vi := services.CreateVariantInput{SKU: v.SKU, StockOnHand: v.Stock}
		if v.Price != "" {
			p, err := parsePrice(v.Price)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.SKU, err)
			}
			vi.Price = &p
		}
		for typeName, valueName := range v.Options {
			id, err := optionValueID(options, typeName, valueName)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.SKU, err)
			}
			vi.OptionValueIDs = append(vi.OptionValueIDs, id)
		}
		variants = append(variants, vi)
	}

	return svc.CreateProductWithVariants(ctx, in, variants, images)
}

// lookupCategory falls back to the raw name so an unknown category surfaces
// as an invalid reference from the service.
func lookupCategory(ids map[string]string, name string) string {
	if id, ok := ids[name]; ok {
		return id
	}
	return name
}

func optionValueID(options map[string]*models.OptionType, typeName, valueName string) (string, error) {
	ot, ok := options[typeName]
	if !ok {
		return "", fmt.Errorf("%w: option type %q is not declared in the manifest", services.ErrInvalidReference, typeName)
	}
	for _, v := range ot.OptionValues {
		if v.Name == valueName {
			return v.ID, nil
		}
	}
	return "", fmt.Errorf("%w: option type %q has no value %q", services.ErrInvalidReference, typeName, valueName)
}

func parsePrice(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q is not a number", services.ErrValidation, s)
	}
	return d, nil
}

// readImages loads every image up front so a missing file fails the product
// before anything is written.
func readImages(baseDir string, paths []string) ([]services.NewImage, error) {
	images := make([]services.NewImage, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		images = append(images, services.NewImage{Filename: filepath.Base(p), Data: data})
	}
	return images, nil
}
