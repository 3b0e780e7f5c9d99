package service

import (
	"librarydesk/internal/errors"
	"librarydesk/internal/model"
)

// borrowFacts is what the store tells us about a user and a book at borrow time.
type borrowFacts struct {
	overdueLoans   int64
	book           *model.Book // nil when the book does not exist
	openLoans      int64
	limit          int
	holdsBook      bool
	allowDuplicate bool
}

// decideBorrow applies the borrow preconditions in order; the first failing one wins.
//
//	overdue open loan        -> ErrOverdueBlocked
//	book missing             -> ErrBookNotFound
//	no copy on the shelf     -> ErrNoCopiesAvailable
//	open loans at the limit  -> ErrBorrowLimitExceeded
//	already holds this book  -> ErrAlreadyBorrowed (unless duplicates are allowed)
func decideBorrow(f borrowFacts) error {
	if f.overdueLoans > 0 {
		return errors.ErrOverdueBlocked
	}
	if f.book == nil {
		return errors.ErrBookNotFound
	}
	if f.book.AvailableCopies <= 0 {
		return errors.ErrNoCopiesAvailable
	}
	if f.openLoans >= int64(f.limit) {
		return errors.ErrBorrowLimitExceeded
	}
	if f.holdsBook && !f.allowDuplicate {
		return errors.ErrAlreadyBorrowed
	}
	return nil
}
