package seeders

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/Rakhulsr/go-catalog/app/db/fakers"
	"github.com/Rakhulsr/go-catalog/app/services"
	"github.com/rs/zerolog/log"
)

//go:embed sample_catalog.yaml
var sampleCatalog []byte

// SampleManifest returns the built-in demo catalog.
func SampleManifest() (*Manifest, error) {
	return ParseManifest(sampleCatalog)
}

// DBSeed loads the sample catalog and then fakeCount random products. The
// sample part is idempotent.
func DBSeed(ctx context.Context, svc *services.CatalogService, fakeCount int) (*ImportResult, error) {
	m, err := SampleManifest()
	if err != nil {
		return nil, err
	}
	for i := 0; i < fakeCount; i++ {
		m.Products = append(m.Products, fakeProductSpec())
	}

	res, err := ImportManifest(ctx, svc, m)
	if err != nil {
		return res, fmt.Errorf("seed catalog: %w", err)
	}
	log.Info().Int("products", res.Created).Int("fake", fakeCount).Msg("catalog seeded")
	return res, nil
}

func fakeProductSpec() ProductSpec {
	p := fakers.ProductFaker()
	spec := ProductSpec{
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price.StringFixed(2),
		SKU:              p.SKU,
		TaxCategory:      "Default",
		ShippingCategory: "Default",
		AvailableOn:      p.AvailableOn,
	}
	if len(p.Sizes) > 0 {
		spec.OptionTypes = []string{"armour-size"}
		for i, size := range p.Sizes {
			spec.Variants = append(spec.Variants, VariantSpec{
				SKU:     fmt.Sprintf("%s-%d", p.SKU, i+1),
				Stock:   p.Stock,
				Options: map[string]string{"armour-size": size},
			})
		}
	}
	return spec
}
