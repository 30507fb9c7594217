package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "$1,599.00", Price(decimal.NewFromInt(1599)))
	assert.Equal(t, "$0.50", Price(decimal.RequireFromString("0.5")))
}
