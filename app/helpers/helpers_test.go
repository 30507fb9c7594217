package helpers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "chest-armour", GenerateSlug("Chest Armour"))
	assert.Equal(t, "leg-armour-v2", GenerateSlug("  Leg Armour (v2) "))
}

func TestSKUPrefix(t *testing.T) {
	cases := map[string]string{
		"Chest Armour": "CHE",
		"a-b":          "AB",
		"42":           "SKU",
		"Öl":           "L",
	}
	for in, want := range cases {
		assert.Equal(t, want, SKUPrefix(in), in)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type form struct {
		Name  string `validate:"required"`
		Count int    `validate:"min=1"`
		Email string `validate:"omitempty,email"`
	}

	err := validator.New().Struct(form{Email: "nope"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err.(validator.ValidationErrors))
	assert.Equal(t, "Name is required.", msgs["name"])
	assert.Equal(t, "Count must be at least 1.", msgs["count"])
	assert.Equal(t, "Email failed on the email rule.", msgs["email"])
}
