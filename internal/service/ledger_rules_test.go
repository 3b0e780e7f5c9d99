package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"librarydesk/internal/errors"
	"librarydesk/internal/model"
)

func eligibleFacts() borrowFacts {
	return borrowFacts{
		book:  &model.Book{ID: 1, TotalCopies: 3, AvailableCopies: 1},
		limit: 2,
	}
}

func Test_DecideBorrow_Success_WhenAllPreconditionsMet(t *testing.T) {
	// arrange
	facts := eligibleFacts()

	// act
	err := decideBorrow(facts)

	// assert
	assert.NoError(t, err)
}

func Test_DecideBorrow_Error_OverdueWinsOverEverything(t *testing.T) {
	// arrange
	facts := borrowFacts{overdueLoans: 1, book: nil, openLoans: 9, limit: 2, holdsBook: true}

	// act
	err := decideBorrow(facts)

	// assert
	assert.ErrorIs(t, err, errors.ErrOverdueBlocked)
}

func Test_DecideBorrow_Error_BookNotFound(t *testing.T) {
	// arrange
	facts := eligibleFacts()
	facts.book = nil

	// act
	err := decideBorrow(facts)

	// assert
	assert.ErrorIs(t, err, errors.ErrBookNotFound)
}

func Test_DecideBorrow_Error_NoCopiesBeforeLimit(t *testing.T) {
	// arrange
	facts := eligibleFacts()
	facts.book.AvailableCopies = 0
	facts.openLoans = 2

	// act
	err := decideBorrow(facts)

	// assert
	assert.ErrorIs(t, err, errors.ErrNoCopiesAvailable)
}

func Test_DecideBorrow_Error_AtLimit(t *testing.T) {
	// arrange
	facts := eligibleFacts()
	facts.openLoans = 2

	// act
	err := decideBorrow(facts)

	// assert
	assert.ErrorIs(t, err, errors.ErrBorrowLimitExceeded)
}

func Test_DecideBorrow_DuplicatePolicy(t *testing.T) {
	// arrange
	facts := eligibleFacts()
	facts.holdsBook = true

	// act + assert
	assert.ErrorIs(t, decideBorrow(facts), errors.ErrAlreadyBorrowed)

	facts.allowDuplicate = true
	assert.NoError(t, decideBorrow(facts))
}
