package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/renovo/internal/errs"
)

func TestPropertyStoreCreateAndGet(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p, err := stores.properties.Create(ctx, "Maple House", "12 Maple St")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Maple House", p.Name)
	assert.Equal(t, "12 Maple St", p.Address)
	assert.Empty(t, p.BlueprintURL)

	got, err := stores.properties.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPropertyStoreGetByID_NotFound(t *testing.T) {
	stores := newTestStores(t)

	p, err := stores.properties.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPropertyStoreSetBlueprint(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	p, err := stores.properties.Create(ctx, "Maple House", "")
	require.NoError(t, err)

	require.NoError(t, stores.properties.SetBlueprint(ctx, p.ID, "https://cdn.example.com/blueprint.pdf"))
	got, err := stores.properties.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blueprint.pdf", got.BlueprintURL)

	err = stores.properties.SetBlueprint(ctx, "missing", "x")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
