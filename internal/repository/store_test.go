package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarydesk/internal/db"
	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gormDB))
	return NewStore(gormDB)
}

func seedBook(t *testing.T, s Store, title string, total, available int) *model.Book {
	t.Helper()
	book := &model.Book{
		Title:           title,
		Author:          "Author of " + title,
		Publisher:       "Pub",
		PublishDate:     "2020-01-01",
		Price:           decimal.RequireFromString("12.50"),
		TotalCopies:     total,
		AvailableCopies: available,
	}
	require.NoError(t, s.Books().Create(context.Background(), book))
	return book
}

func TestBookRepository_CreateAssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)

	first := seedBook(t, s, "First", 3, 3)
	second := seedBook(t, s, "Second", 3, 3)

	assert.Greater(t, second.ID, first.ID)
}

func TestBookRepository_FindByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Books().FindByID(context.Background(), 999)

	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)
}

func TestBookRepository_AdjustAvailable_Bounds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := seedBook(t, s, "Bounded", 2, 1)

	require.NoError(t, s.Books().AdjustAvailable(ctx, book.ID, -1))
	assert.ErrorIs(t, s.Books().AdjustAvailable(ctx, book.ID, -1), apperrors.ErrCopyCountInvariant)

	require.NoError(t, s.Books().AdjustAvailable(ctx, book.ID, 1))
	require.NoError(t, s.Books().AdjustAvailable(ctx, book.ID, 1))
	assert.ErrorIs(t, s.Books().AdjustAvailable(ctx, book.ID, 1), apperrors.ErrCopyCountInvariant)

	got, err := s.Books().FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)
}

func TestBookRepository_UpdateKeepsTitleAndCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := seedBook(t, s, "Immutable", 3, 2)

	author := "New Author"
	price := decimal.RequireFromString("30.00")
	require.NoError(t, s.Books().Update(ctx, book.ID, model.BookUpdate{Author: &author, Price: &price}))

	got, err := s.Books().FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Immutable", got.Title)
	assert.Equal(t, "New Author", got.Author)
	assert.True(t, price.Equal(got.Price))
	assert.Equal(t, 2, got.AvailableCopies)

	assert.ErrorIs(t, s.Books().Update(ctx, book.ID, model.BookUpdate{}), apperrors.ErrNothingToUpdate)
	assert.ErrorIs(t, s.Books().Update(ctx, 999, model.BookUpdate{Author: &author}), apperrors.ErrBookNotFound)
}

func TestBookRepository_SearchAndListAvailable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dune := seedBook(t, s, "Dune", 3, 0)
	seedBook(t, s, "Foundation", 3, 3)

	found, err := s.Books().Search(ctx, "dUn")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, dune.ID, found[0].ID)

	byAuthor, err := s.Books().Search(ctx, "author of")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	available, err := s.Books().ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Foundation", available[0].Title)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().Create(ctx, &model.User{Username: "alice", PasswordHash: "x", Role: model.RoleUser, MaxBorrow: 5}))
	err := s.Users().Create(ctx, &model.User{Username: "alice", PasswordHash: "y", Role: model.RoleUser, MaxBorrow: 5})
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

	exists, err := s.Users().Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Users().FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_FindByUsernameForUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Users().Create(ctx, &model.User{Username: "alice", PasswordHash: "x", Role: model.RoleUser, MaxBorrow: 3}))

	err := s.WithTransaction(ctx, func(ctx context.Context, tx Store) error {
		user, err := tx.Users().FindByUsernameForUpdate(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 3, user.MaxBorrow)

		_, err = tx.Users().FindByUsernameForUpdate(ctx, "bob")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestLoanRepository_FindOpen_NoneOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := seedBook(t, s, "Idle", 1, 1)

	_, err := s.Loans().FindOpen(ctx, "alice", book.ID)

	assert.ErrorIs(t, err, apperrors.ErrNoOpenLoan)
}

func TestLoanRepository_OpenCloseAndOverdue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := seedBook(t, s, "Loaned", 3, 3)
	now := time.Now().UTC().Truncate(time.Second)

	late := &model.Loan{UserID: "alice", BookID: book.ID, BorrowedAt: now.AddDate(0, 0, -35), DueAt: now.AddDate(0, 0, -5)}
	fresh := &model.Loan{UserID: "alice", BookID: book.ID, BorrowedAt: now, DueAt: now.AddDate(0, 0, 30)}
	require.NoError(t, s.Loans().Create(ctx, late))
	require.NoError(t, s.Loans().Create(ctx, fresh))

	open, err := s.Loans().CountOpen(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, open)

	overdue, err := s.Loans().CountOverdue(ctx, "alice", now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, overdue)

	oldest, err := s.Loans().FindOpen(ctx, "alice", book.ID)
	require.NoError(t, err)
	assert.Equal(t, late.ID, oldest.ID)

	require.NoError(t, s.Loans().Close(ctx, late.ID, now))
	assert.ErrorIs(t, s.Loans().Close(ctx, late.ID, now), apperrors.ErrNoOpenLoan)

	overdueAll, err := s.Loans().ListOverdue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, overdueAll)

	history, err := s.Loans().ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestStore_WithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := seedBook(t, s, "Atomic", 1, 1)
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context, tx Store) error {
		now := time.Now().UTC()
		if err := tx.Loans().Create(ctx, &model.Loan{UserID: "alice", BookID: book.ID, BorrowedAt: now, DueAt: now}); err != nil {
			return err
		}
		if err := tx.Books().AdjustAvailable(ctx, book.ID, -1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Books().FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)

	open, err := s.Loans().CountOpen(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, open)
}

func TestStore_ConcurrentTakeOfLastCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := seedBook(t, s, "Last Copy", 3, 1)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.WithTransaction(ctx, func(ctx context.Context, tx Store) error {
				b, err := tx.Books().FindByIDForUpdate(ctx, book.ID)
				if err != nil {
					return err
				}
				if b.AvailableCopies <= 0 {
					return apperrors.ErrNoCopiesAvailable
				}
				return tx.Books().AdjustAvailable(ctx, book.ID, -1)
			})
		}()
	}
	wg.Wait()
	close(results)

	var ok, empty int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrNoCopiesAvailable):
			empty++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, empty)
}
