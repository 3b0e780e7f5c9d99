package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
	"librarydesk/internal/repository/memstore"
)

func TestCatalogService_AddBook(t *testing.T) {
	tests := []struct {
		name          string
		book          model.Book
		expectedError error
		expectedTotal int
	}{
		{
			name:          "defaults to three copies, all available",
			book:          model.Book{Title: "Dune", Author: "Frank Herbert", PublishDate: "1965-08-01", Price: decimal.RequireFromString("9.99")},
			expectedTotal: 3,
		},
		{
			name:          "keeps explicit copy count and ignores given availability",
			book:          model.Book{Title: "Emma", Author: "Jane Austen", TotalCopies: 5, AvailableCopies: 1},
			expectedTotal: 5,
		},
		{
			name:          "missing title",
			book:          model.Book{Author: "Nobody"},
			expectedError: apperrors.ErrInvalidBook,
		},
		{
			name:          "bad publish date",
			book:          model.Book{Title: "T", Author: "A", PublishDate: "01/02/2020"},
			expectedError: apperrors.ErrInvalidBook,
		},
		{
			name:          "negative price",
			book:          model.Book{Title: "T", Author: "A", Price: decimal.NewFromInt(-1)},
			expectedError: apperrors.ErrInvalidBook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCatalogService(memstore.New(), nil)
			book := tt.book

			created, err := svc.AddBook(context.Background(), &book)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, created.ID)
			assert.Equal(t, tt.expectedTotal, created.TotalCopies)
			assert.Equal(t, tt.expectedTotal, created.AvailableCopies)
		})
	}
}

func TestCatalogService_ModifyBookKeepsTitle(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(memstore.New(), nil)
	book, err := svc.AddBook(ctx, &model.Book{Title: "Dune", Author: "F. Herbert"})
	require.NoError(t, err)

	author := "Frank Herbert"
	badDate := "yesterday"
	updated, err := svc.ModifyBook(ctx, book.ID, model.BookUpdate{Author: &author})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, author, updated.Author)

	_, err = svc.ModifyBook(ctx, book.ID, model.BookUpdate{PublishDate: &badDate})
	assert.ErrorIs(t, err, apperrors.ErrInvalidBook)

	_, err = svc.ModifyBook(ctx, book.ID, model.BookUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrNothingToUpdate)

	_, err = svc.ModifyBook(ctx, 404, model.BookUpdate{Author: &author})
	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)
}

func TestCatalogService_ModifyBookRejectsBlankAuthor(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(memstore.New(), nil)
	book, err := svc.AddBook(ctx, &model.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	for _, blank := range []string{"", "   "} {
		_, err = svc.ModifyBook(ctx, book.ID, model.BookUpdate{Author: &blank})
		assert.ErrorIs(t, err, apperrors.ErrInvalidBook)
	}

	stored, err := svc.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", stored.Author)
}

func TestCatalogService_DeleteBookCascadesLoans(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewCatalogService(store, nil)
	book, err := svc.AddBook(ctx, &model.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, store.Loans().Create(ctx, &model.Loan{UserID: "u", BookID: book.ID, BorrowedAt: now, DueAt: now.AddDate(0, 0, 30)}))

	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	_, err = svc.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)
	history, err := store.Loans().ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.ErrorIs(t, svc.DeleteBook(ctx, book.ID), apperrors.ErrBookNotFound)
}

func TestCatalogService_SearchAndAvailability(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewCatalogService(store, nil)
	dune, err := svc.AddBook(ctx, &model.Book{Title: "Dune", Author: "Frank Herbert", Publisher: "Chilton"})
	require.NoError(t, err)
	_, err = svc.AddBook(ctx, &model.Book{Title: "Emma", Author: "Jane Austen", Publisher: "John Murray", TotalCopies: 1})
	require.NoError(t, err)

	byPublisher, err := svc.Search(ctx, "chil")
	require.NoError(t, err)
	require.Len(t, byPublisher, 1)
	assert.Equal(t, dune.ID, byPublisher[0].ID)

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Books().AdjustAvailable(ctx, dune.ID, -1))
	}
	available, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Emma", available[0].Title)
}
