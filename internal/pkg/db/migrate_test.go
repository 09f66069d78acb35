package db

import (
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closeCounter stands in for a database driver; only Close is called during construction.
type closeCounter struct {
	database.Driver
	closed int
}

func (d *closeCounter) Close() error {
	d.closed++
	return nil
}

func TestMigrateFrom_ClosesDriverOnBadSource(t *testing.T) {
	driver := &closeCounter{}

	m, err := migrateFrom(fstest.MapFS{}, driver)

	require.Error(t, err)
	assert.Nil(t, m)
	assert.Equal(t, 1, driver.closed)
}

func TestMigrateFrom_EmbeddedMigrations(t *testing.T) {
	driver := &closeCounter{}

	m, err := migrateFrom(migrationsFS, driver)

	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Zero(t, driver.closed)
}
