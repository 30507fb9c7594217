package fakers

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var pieces = []string{"Bracers", "Pauldrons", "Gorget", "Sabatons", "Cuirass", "Vambraces", "Tassets"}

var sizes = []string{"Small", "Medium", "Large"}

// FakeProduct is a random demo product. Sizes name values of the
// armour-size option type.
type FakeProduct struct {
	Name        string
	Description string
	SKU         string
	Price       decimal.Decimal
	Stock       int
	AvailableOn *time.Time
	Sizes       []string
}

func ProductFaker() FakeProduct {
	word := faker.Word()
	name := strings.ToUpper(word[:1]) + word[1:] + " " + pieces[rand.Intn(len(pieces))]

	p := FakeProduct{
		Name:        name,
		Description: faker.Paragraph(),
		SKU:         "FAK-" + strings.ToUpper(uuid.NewString()[:8]),
		Price:       decimal.NewFromFloat(fakePrice()).Round(2),
		Stock:       rand.Intn(20) + 1,
	}

	// roughly one in four is not on sale yet
	if rand.Intn(4) > 0 {
		at := time.Now().UTC().Add(-time.Duration(rand.Intn(30*24)) * time.Hour)
		p.AvailableOn = &at
	}
	if rand.Intn(2) == 0 {
		p.Sizes = append(p.Sizes, sizes[:rand.Intn(len(sizes))+1]...)
	}
	return p
}

func fakePrice() float64 {
	return precision(rand.Float64()*math.Pow10(rand.Intn(4)+1), 2)
}

func precision(val float64, pre int) float64 {
	a := math.Pow10(pre)
	return float64(int(val*a)) / a
}
