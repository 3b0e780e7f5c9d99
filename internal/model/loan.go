package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanStatus describes an open loan relative to its due date.
type LoanStatus string

const (
	LoanStatusNormal   LoanStatus = "normal"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusReturned LoanStatus = "returned"
)

// Loan is a borrow record. A loan is open while ReturnedAt is nil.
type Loan struct {
	ID         uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     string     `json:"user_id" gorm:"size:64;not null;index:idx_loans_user_open,priority:1"`
	BookID     int64      `json:"book_id" gorm:"not null;index"`
	BorrowedAt time.Time  `json:"borrowed_at" gorm:"not null"`
	DueAt      time.Time  `json:"due_at" gorm:"not null;index"`
	ReturnedAt *time.Time `json:"returned_at,omitempty" gorm:"index:idx_loans_user_open,priority:2"`
}

// BeforeCreate sets UUID before creating the record.
func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the loan has not been returned yet.
func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports whether the loan is open and past its due time at now.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsOpen() && l.DueAt.Before(now)
}

// Status classifies the loan at now.
func (l *Loan) Status(now time.Time) LoanStatus {
	switch {
	case !l.IsOpen():
		return LoanStatusReturned
	case l.IsOverdue(now):
		return LoanStatusOverdue
	default:
		return LoanStatusNormal
	}
}

// LoanView joins a loan with the book details shown to patrons and librarians.
type LoanView struct {
	LoanID     uuid.UUID  `json:"loan_id"`
	UserID     string     `json:"user_id"`
	BookID     int64      `json:"book_id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     LoanStatus `json:"status"`
}

// NewLoanView builds the view for loan l of book b at now. b may be nil when the
// book row is no longer readable.
func NewLoanView(l Loan, b *Book, now time.Time) LoanView {
	v := LoanView{
		LoanID:     l.ID,
		UserID:     l.UserID,
		BookID:     l.BookID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
		Status:     l.Status(now),
	}
	if b != nil {
		v.Title = b.Title
		v.Author = b.Author
	}
	return v
}

// Eligibility summarises whether a user may borrow right now.
type Eligibility struct {
	Username     string `json:"username"`
	OpenLoans    int    `json:"open_loans"`
	OverdueLoans int    `json:"overdue_loans"`
	MaxBorrow    int    `json:"max_borrow"`
	CanBorrow    bool   `json:"can_borrow"`
}
