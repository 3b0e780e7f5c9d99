package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book represents a catalog entry and its physical copy counts.
// AvailableCopies is only changed by the loan ledger; catalog edits never touch it.
type Book struct {
	ID              int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string          `json:"title" gorm:"size:255;not null;index"`
	Author          string          `json:"author" gorm:"size:255;not null;index"`
	Publisher       string          `json:"publisher" gorm:"size:255"`
	PublishDate     string          `json:"publish_date" gorm:"size:10"` // YYYY-MM-DD
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	TotalCopies     int             `json:"total_copies" gorm:"not null;default:3"`
	AvailableCopies int             `json:"available_copies" gorm:"not null;default:3;index"`
	Category        string          `json:"category,omitempty" gorm:"size:100"`
	ISBN            string          `json:"isbn,omitempty" gorm:"size:20"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	Loans []Loan `json:"-" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

// Borrowed returns the number of copies currently out on loan.
func (b *Book) Borrowed() int {
	return b.TotalCopies - b.AvailableCopies
}

// BookUpdate carries the catalog fields a librarian may change after creation.
// Nil fields are left untouched. Title and ID are immutable.
type BookUpdate struct {
	Author      *string
	Publisher   *string
	PublishDate *string
	Price       *decimal.Decimal
}

// Empty reports whether the update would change nothing.
func (u BookUpdate) Empty() bool {
	return u.Author == nil && u.Publisher == nil && u.PublishDate == nil && u.Price == nil
}

// Columns returns the update as a column map for the SQL store.
func (u BookUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if u.Author != nil {
		cols["author"] = *u.Author
	}
	if u.Publisher != nil {
		cols["publisher"] = *u.Publisher
	}
	if u.PublishDate != nil {
		cols["publish_date"] = *u.PublishDate
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	return cols
}

// Apply copies the non-nil fields onto b.
func (u BookUpdate) Apply(b *Book) {
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Publisher != nil {
		b.Publisher = *u.Publisher
	}
	if u.PublishDate != nil {
		b.PublishDate = *u.PublishDate
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
}
