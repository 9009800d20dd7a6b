package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenForTesting(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	for _, table := range []string{"properties", "rooms", "projects", "room_designs", "before_photos"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestOpenForTestingIsolated(t *testing.T) {
	a, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	b, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, b.Close()) })

	_, err = a.Exec("INSERT INTO properties (id, name) VALUES ('p1', 'Home')")
	require.NoError(t, err)

	var count int
	require.NoError(t, b.QueryRow("SELECT COUNT(*) FROM properties").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestOpenReappliesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renovo.db")

	first, err := Open(path)
	require.NoError(t, err)
	_, err = first.Exec("INSERT INTO properties (id, name) VALUES ('p1', 'Home')")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, second.Close()) })

	var count int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM properties").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	_, err = db.Exec("INSERT INTO rooms (id, property_id, name) VALUES ('r1', 'missing', 'Kitchen')")
	assert.Error(t, err)
}
