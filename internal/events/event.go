// Package events defines loan events published to the message broker.
package events

import (
	"context"
	"time"

	"librarydesk/internal/model"
)

// Event types, also used as queue names.
const (
	TypeLoanBorrowed = "loan.borrowed"
	TypeLoanReturned = "loan.returned"
)

// LoanEvent is published after a borrow or return commits. It carries enough
// for consumers to notify or report without querying the store.
type LoanEvent struct {
	Type       string     `json:"type"`
	LoanID     string     `json:"loan_id"`
	Username   string     `json:"username"`
	BookID     int64      `json:"book_id"`
	BookTitle  string     `json:"book_title"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewLoanEvent builds an event of type kind for loan.
func NewLoanEvent(kind string, loan *model.Loan, bookTitle string, at time.Time) LoanEvent {
	return LoanEvent{
		Type:       kind,
		LoanID:     loan.ID.String(),
		Username:   loan.UserID,
		BookID:     loan.BookID,
		BookTitle:  bookTitle,
		BorrowedAt: loan.BorrowedAt,
		DueAt:      loan.DueAt,
		ReturnedAt: loan.ReturnedAt,
		OccurredAt: at,
	}
}

// Publisher delivers loan events. Failures are reported but never undo a committed loan.
type Publisher interface {
	Publish(ctx context.Context, event LoanEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish discards event.
func (NopPublisher) Publish(context.Context, LoanEvent) error {
	return nil
}

// Close is a no-op.
func (NopPublisher) Close() error {
	return nil
}
