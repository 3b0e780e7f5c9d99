package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"librarydesk/internal/model"
)

// BookRepository defines catalog persistence operations.
// Lookups of a missing book return errors.ErrBookNotFound.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	// FindByIDForUpdate locks the book row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id int64) (*model.Book, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Book, error)
	Update(ctx context.Context, id int64, upd model.BookUpdate) error
	// AdjustAvailable adds delta to the available copy count only when the
	// result stays within [0, total_copies]; otherwise it returns
	// errors.ErrCopyCountInvariant and changes nothing.
	AdjustAvailable(ctx context.Context, id int64, delta int) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Book, error)
	ListAvailable(ctx context.Context) ([]model.Book, error)
	// Search matches keyword against id, title, author and publisher.
	Search(ctx context.Context, keyword string) ([]model.Book, error)
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// FindByUsernameForUpdate reads the user and holds its row until the transaction ends.
	FindByUsernameForUpdate(ctx context.Context, username string) (*model.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
}

// LoanRepository defines borrow record persistence operations.
type LoanRepository interface {
	Create(ctx context.Context, loan *model.Loan) error
	// FindOpen returns the oldest open loan of username on bookID or errors.ErrNoOpenLoan.
	FindOpen(ctx context.Context, username string, bookID int64) (*model.Loan, error)
	// Close sets returned_at on an open loan; an already closed loan yields errors.ErrNoOpenLoan.
	Close(ctx context.Context, id uuid.UUID, at time.Time) error
	CountOpen(ctx context.Context, username string) (int64, error)
	CountOverdue(ctx context.Context, username string, now time.Time) (int64, error)
	ListOpenByUser(ctx context.Context, username string) ([]model.Loan, error)
	ListByUser(ctx context.Context, username string) ([]model.Loan, error)
	ListOverdue(ctx context.Context, now time.Time) ([]model.Loan, error)
	DeleteByBook(ctx context.Context, bookID int64) error
}

// Store aggregates the repositories of one backing store.
type Store interface {
	Books() BookRepository
	Users() UserRepository
	Loans() LoanRepository
	// WithTransaction runs fn against a Store bound to a single transaction.
	// Any error returned by fn rolls back every write made through tx.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
