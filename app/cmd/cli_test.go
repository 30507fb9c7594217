package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rakhulsr/go-catalog/app/configs"
	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/Rakhulsr/go-catalog/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) configs.ENV {
	t.Helper()
	dir := t.TempDir()
	return configs.ENV{
		DBDriver:     configs.DriverSQLite,
		DBPath:       filepath.Join(dir, "catalog.db"),
		DBMaxRetries: 1,
		AssetDir:     filepath.Join(dir, "assets"),
		LogLevel:     "error",
	}
}

func run(t *testing.T, env configs.ENV, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewApp(env, &out).Run(context.Background(), append([]string{"catalog"}, args...))
	return out.String(), err
}

func TestCLI_SeedAndBrowse(t *testing.T) {
	env := testEnv(t)

	_, err := run(t, env, "migrate")
	require.NoError(t, err)

	out, err := run(t, env, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 5 products")

	out, err = run(t, env, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 0 products (5 already present)")

	out, err = run(t, env, "categories")
	require.NoError(t, err)
	assert.Regexp(t, `tax\s+Default`, out)
	assert.Regexp(t, `shipping\s+Default`, out)

	out, err = run(t, env, "option-types")
	require.NoError(t, err)
	assert.Regexp(t, `armour-size\s+Size\s+Small, Medium, Large`, out)
	assert.Regexp(t, `armour-colour\s+Colour\s+Silver, Black, Gold`, out)

	out, err = run(t, env, "product", "leg-armour")
	require.NoError(t, err)
	assert.Contains(t, out, "options:   Size, Colour")

	out, err = run(t, env, "products", "--query", "armour")
	require.NoError(t, err)
	assert.Contains(t, out, "chest-armour")
	assert.Contains(t, out, "leg-armour")
	assert.NotContains(t, out, "wooden-shield")
	assert.Contains(t, out, "2 of 2 products")

	out, err = run(t, env, "product", "chest-armour")
	require.NoError(t, err)
	assert.Contains(t, out, "$1,599.00")
	assert.Contains(t, out, "CHE-00001")
	assert.Contains(t, out, "CHE-00004")

	out, err = run(t, env, "discontinue", "chest-armour")
	require.NoError(t, err)
	assert.Contains(t, out, "Chest Armour discontinued")

	out, err = run(t, env, "products", "--available")
	require.NoError(t, err)
	assert.NotContains(t, out, "chest-armour")
	assert.Contains(t, out, "3 of 3 products")
}

func TestCLI_MissingArguments(t *testing.T) {
	env := testEnv(t)
	for _, name := range []string{"import", "product", "discontinue", "cancel-order"} {
		_, err := run(t, env, name)
		assert.Error(t, err, name)
	}
}

func TestCLI_CancelUnknownOrder(t *testing.T) {
	env := testEnv(t)
	_, err := run(t, env, "migrate")
	require.NoError(t, err)

	_, err = run(t, env, "cancel-order", "R-404")
	assert.True(t, errors.Is(err, services.ErrNotFound), "got %v", err)
}

func TestCanceler_RegistersWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	order := &models.Order{Code: "R-1", Status: models.OrderStatusPending, PlacedAt: now.Add(-48 * time.Hour)}

	env := testEnv(t)
	assert.NoError(t, Canceler(env).CanCancel(order, now))

	env.CancelWindow = 24 * time.Hour
	assert.True(t, errors.Is(Canceler(env).CanCancel(order, now), services.ErrInvalidState))
}
