package db

import (
	"fmt"

	"gorm.io/gorm"

	"librarydesk/internal/config"
)

// OpenSQL opens the GORM database selected by cfg.StoreDriver.
func OpenSQL(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		return NewMySQL(cfg.MySQLDSN)
	case config.DriverPostgres:
		return NewPostgres(cfg.PostgresDSN)
	case config.DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("store driver %q is not a SQL driver", cfg.StoreDriver)
	}
}
