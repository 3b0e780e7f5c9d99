package repository

import (
	"log"

	"gorm.io/gorm"

	"librarydesk/internal/model"
)

// AutoMigrate creates or updates the tables for books, users and loans.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Book{}, &model.User{}, &model.Loan{})
}

// DropAll drops every table, loans first.
func DropAll(db *gorm.DB) {
	tables := []interface{}{
		&model.Loan{},
		&model.Book{},
		&model.User{},
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			log.Printf("Warning: Failed to drop table (may not exist): %v", err)
		}
	}
}
