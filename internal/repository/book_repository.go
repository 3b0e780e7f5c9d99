package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
)

type bookRepository struct {
	db *gorm.DB
}

// Create inserts a book; the store assigns the next id.
func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return apperrors.Store("create book", r.db.WithContext(ctx).Create(book).Error)
}

// FindByID finds a book by ID.
func (r *bookRepository) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, bookErr("find book", err)
	}
	return &book, nil
}

// FindByIDForUpdate finds a book by ID with row-level lock for update.
func (r *bookRepository) FindByIDForUpdate(ctx context.Context, id int64) (*model.Book, error) {
	var book model.Book
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, bookErr("lock book", err)
	}
	return &book, nil
}

func (r *bookRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Book, error) {
	var books []model.Book
	if len(ids) == 0 {
		return books, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, apperrors.Store("find books", err)
	}
	return books, nil
}

// Update changes the editable catalog fields of a book.
func (r *bookRepository) Update(ctx context.Context, id int64, upd model.BookUpdate) error {
	if upd.Empty() {
		return apperrors.ErrNothingToUpdate
	}
	res := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", id).Updates(upd.Columns())
	if res.Error != nil {
		return apperrors.Store("update book", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows when the values are unchanged.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AdjustAvailable applies delta as a conditional update.
func (r *bookRepository) AdjustAvailable(ctx context.Context, id int64, delta int) error {
	res := r.db.WithContext(ctx).Model(&model.Book{}).
		Where("id = ? AND available_copies + ? >= 0 AND available_copies + ? <= total_copies", id, delta, delta).
		Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if res.Error != nil {
		return apperrors.Store("adjust available copies", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCopyCountInvariant
	}
	return nil
}

// Delete removes a book row. Callers delete its loans in the same transaction.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Book{})
	if res.Error != nil {
		return apperrors.Store("delete book", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := r.db.WithContext(ctx).Order("id").Find(&books).Error; err != nil {
		return nil, apperrors.Store("list books", err)
	}
	return books, nil
}

func (r *bookRepository) ListAvailable(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := r.db.WithContext(ctx).Where("available_copies > 0").Order("id").Find(&books).Error; err != nil {
		return nil, apperrors.Store("list available books", err)
	}
	return books, nil
}

func (r *bookRepository) Search(ctx context.Context, keyword string) ([]model.Book, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	q := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ?", pattern).
		Or("LOWER(author) LIKE ?", pattern).
		Or("LOWER(publisher) LIKE ?", pattern)
	if id, err := strconv.ParseInt(keyword, 10, 64); err == nil {
		q = q.Or("id = ?", id)
	}

	var books []model.Book
	if err := q.Order("id").Find(&books).Error; err != nil {
		return nil, apperrors.Store("search books", err)
	}
	return books, nil
}

func bookErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrBookNotFound
	}
	return apperrors.Store(op, err)
}
