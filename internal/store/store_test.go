package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/renovo/internal/db"
)

type testStores struct {
	properties *PropertyStore
	projects   *ProjectStore
	rooms      *RoomStore
	photos     *PhotoStore
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	return &testStores{
		properties: NewPropertyStore(d),
		projects:   NewProjectStore(d),
		rooms:      NewRoomStore(d),
		photos:     NewPhotoStore(d),
	}
}
