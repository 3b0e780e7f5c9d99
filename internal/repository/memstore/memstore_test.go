package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
	"librarydesk/internal/repository"
)

func TestStore_TransactionCommitsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	book := &model.Book{Title: "Dune", TotalCopies: 2, AvailableCopies: 2}
	require.NoError(t, s.Books().Create(ctx, book))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		require.NoError(t, tx.Books().AdjustAvailable(ctx, book.ID, -1))
		require.NoError(t, tx.Loans().Create(ctx, &model.Loan{UserID: "alice", BookID: book.ID}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Books().FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)
	open, err := s.Loans().CountOpen(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, open)

	err = s.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.Books().AdjustAvailable(ctx, book.ID, -1)
	})
	require.NoError(t, err)
	got, err = s.Books().FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestStore_FailOnWrapsAsStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.FailOn(OpCreateLoan, errors.New("disk full"))

	err := s.Loans().Create(ctx, &model.Loan{UserID: "alice", BookID: 1})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	s.FailOn(OpCreateLoan, nil)
	assert.NoError(t, s.Loans().Create(ctx, &model.Loan{UserID: "alice", BookID: 1}))
}

func TestStore_InstancesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a, b := New(), New()
	require.NoError(t, a.Books().Create(ctx, &model.Book{Title: "Only in A", TotalCopies: 1, AvailableCopies: 1}))

	list, err := b.Books().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLoans_OverdueAndDeleteByBook(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now().UTC()
	require.NoError(t, s.Loans().Create(ctx, &model.Loan{UserID: "alice", BookID: 1, BorrowedAt: now.AddDate(0, 0, -40), DueAt: now.AddDate(0, 0, -10)}))
	require.NoError(t, s.Loans().Create(ctx, &model.Loan{UserID: "bob", BookID: 2, BorrowedAt: now, DueAt: now.AddDate(0, 0, 30)}))

	overdue, err := s.Loans().ListOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "alice", overdue[0].UserID)

	require.NoError(t, s.Loans().DeleteByBook(ctx, 1))
	history, err := s.Loans().ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, history)
}
