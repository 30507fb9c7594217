package fakers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductFaker(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p := ProductFaker()

		assert.NotEmpty(t, p.Name)
		assert.True(t, strings.HasPrefix(p.SKU, "FAK-"), p.SKU)
		assert.False(t, seen[p.SKU], "duplicate sku %s", p.SKU)
		seen[p.SKU] = true
		assert.False(t, p.Price.IsNegative())
		assert.True(t, p.Price.Equal(p.Price.Round(2)))
		assert.Greater(t, p.Stock, 0)
		assert.LessOrEqual(t, len(p.Sizes), len(sizes))
	}
}
