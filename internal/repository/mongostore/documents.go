package mongostore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"librarydesk/internal/model"
)

type bookDocument struct {
	ID              int64                `bson:"_id"`
	Title           string               `bson:"title"`
	Author          string               `bson:"author"`
	Publisher       string               `bson:"publisher"`
	PublishDate     string               `bson:"publish_date"`
	Price           primitive.Decimal128 `bson:"price"`
	TotalCopies     int                  `bson:"total_copies"`
	AvailableCopies int                  `bson:"available_copies"`
	Category        string               `bson:"category,omitempty"`
	ISBN            string               `bson:"isbn,omitempty"`
	Version         int64                `bson:"version"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Seq          uint               `bson:"seq"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Phone        string             `bson:"phone,omitempty"`
	Email        string             `bson:"email,omitempty"`
	MaxBorrow    int                `bson:"max_borrow"`
	Version      int64              `bson:"version"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type loanDocument struct {
	ID         string     `bson:"_id"`
	UserID     string     `bson:"user_id"`
	BookID     int64      `bson:"book_id"`
	BorrowedAt time.Time  `bson:"borrowed_at"`
	DueAt      time.Time  `bson:"due_at"`
	ReturnedAt *time.Time `bson:"returned_at"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func newBookDocument(b *model.Book) bookDocument {
	return bookDocument{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		PublishDate:     b.PublishDate,
		Price:           toDecimal128(b.Price),
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Category:        b.Category,
		ISBN:            b.ISBN,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (d bookDocument) model() model.Book {
	return model.Book{
		ID:              d.ID,
		Title:           d.Title,
		Author:          d.Author,
		Publisher:       d.Publisher,
		PublishDate:     d.PublishDate,
		Price:           fromDecimal128(d.Price),
		TotalCopies:     d.TotalCopies,
		AvailableCopies: d.AvailableCopies,
		Category:        d.Category,
		ISBN:            d.ISBN,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func newUserDocument(u *model.User) userDocument {
	return userDocument{
		Seq:          u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Phone:        u.Phone,
		Email:        u.Email,
		MaxBorrow:    u.MaxBorrow,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) model() model.User {
	return model.User{
		ID:           d.Seq,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Phone:        d.Phone,
		Email:        d.Email,
		MaxBorrow:    d.MaxBorrow,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func newLoanDocument(l *model.Loan) loanDocument {
	return loanDocument{
		ID:         l.ID.String(),
		UserID:     l.UserID,
		BookID:     l.BookID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
	}
}

func (d loanDocument) model() model.Loan {
	id, _ := uuid.Parse(d.ID)
	return model.Loan{
		ID:         id,
		UserID:     d.UserID,
		BookID:     d.BookID,
		BorrowedAt: d.BorrowedAt,
		DueAt:      d.DueAt,
		ReturnedAt: d.ReturnedAt,
	}
}
