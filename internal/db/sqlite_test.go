package db

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"librarydesk/internal/config"
)

func TestOpenSQL_SQLite(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "library.db"),
	}

	gormDB, err := OpenSQL(cfg)
	require.NoError(t, err)

	var one int
	require.NoError(t, gormDB.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpenSQL_RejectsNonSQLDriver(t *testing.T) {
	_, err := OpenSQL(&config.Config{StoreDriver: config.DriverMemory})
	assert.Error(t, err)
}

func TestGormConfig_DoesNotLogRecordNotFound(t *testing.T) {
	type row struct {
		ID int64
	}
	var out bytes.Buffer
	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "quiet.db")), gormConfig(&out))
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&row{}))

	err = gormDB.First(&row{}, 42).Error

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, out.String())
}
