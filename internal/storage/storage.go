// Package storage opens the repository.Store selected by STORE_DRIVER.
package storage

import (
	"context"
	"fmt"
	"log"

	"librarydesk/internal/config"
	"librarydesk/internal/db"
	"librarydesk/internal/repository"
	"librarydesk/internal/repository/memstore"
	"librarydesk/internal/repository/mongostore"
)

// Options controls schema handling when a store is opened.
type Options struct {
	// Reset drops all tables or collections before migrating.
	Reset bool
	// Migrate creates tables or indexes.
	Migrate bool
}

// Open connects to the configured backend. The returned close function
// releases the connection and is never nil.
func Open(ctx context.Context, cfg *config.Config, opts Options) (repository.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL, config.DriverPostgres, config.DriverSQLite:
		gormDB, err := db.OpenSQL(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("database init: %w", err)
		}
		if opts.Reset {
			log.Println("RESET_DB=true detected, dropping all tables...")
			repository.DropAll(gormDB)
			log.Println("Tables dropped")
		}
		if opts.Migrate {
			if err := repository.AutoMigrate(gormDB); err != nil {
				return nil, nil, fmt.Errorf("auto-migrate: %w", err)
			}
		}
		closeFn := func() error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return repository.NewStore(gormDB), closeFn, nil

	case config.DriverMongo:
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo init: %w", err)
		}
		store := mongostore.New(client, cfg.MongoDB)
		if opts.Reset {
			log.Println("RESET_DB=true detected, dropping all collections...")
			if err := store.Drop(ctx); err != nil {
				log.Printf("Warning: Failed to drop collections: %v", err)
			}
		}
		if opts.Migrate {
			if err := store.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, nil, fmt.Errorf("mongo indexes: %w", err)
			}
		}
		return store, func() error { return client.Disconnect(context.Background()) }, nil

	case config.DriverMemory:
		log.Println("storage: using in-memory store, data is lost on exit")
		return memstore.New(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
