package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarydesk/internal/config"
	"librarydesk/internal/model"
)

func TestOpen_SQLiteMigratesSchema(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "library.db"),
	}

	store, closeFn, err := Open(context.Background(), cfg, Options{Migrate: true})
	require.NoError(t, err)
	defer closeFn()

	book := &model.Book{Title: "Refactoring", Author: "Martin Fowler", TotalCopies: 3, AvailableCopies: 3}
	require.NoError(t, store.Books().Create(context.Background(), book))
	assert.NotZero(t, book.ID)
}

func TestOpen_Memory(t *testing.T) {
	store, closeFn, err := Open(context.Background(), &config.Config{StoreDriver: config.DriverMemory}, Options{})
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	assert.NotNil(t, store)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StoreDriver: "oracle"}, Options{})
	assert.Error(t, err)
}
