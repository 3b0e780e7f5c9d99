package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
)

type loanRepository struct {
	db *gorm.DB
}

func (r *loanRepository) Create(ctx context.Context, loan *model.Loan) error {
	return apperrors.Store("create loan", r.db.WithContext(ctx).Create(loan).Error)
}

func (r *loanRepository) FindOpen(ctx context.Context, username string, bookID int64) (*model.Loan, error) {
	var loans []model.Loan
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND returned_at IS NULL", username, bookID).
		Order("borrowed_at").
		Limit(1).
		Find(&loans)
	if res.Error != nil {
		return nil, apperrors.Store("find open loan", res.Error)
	}
	if len(loans) == 0 {
		return nil, apperrors.ErrNoOpenLoan
	}
	return &loans[0], nil
}

func (r *loanRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("id = ? AND returned_at IS NULL", id).
		Update("returned_at", at)
	if res.Error != nil {
		return apperrors.Store("close loan", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNoOpenLoan
	}
	return nil
}

func (r *loanRepository) CountOpen(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("user_id = ? AND returned_at IS NULL", username).
		Count(&count).Error
	return count, apperrors.Store("count open loans", err)
}

func (r *loanRepository) CountOverdue(ctx context.Context, username string, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("user_id = ? AND returned_at IS NULL AND due_at < ?", username, now).
		Count(&count).Error
	return count, apperrors.Store("count overdue loans", err)
}

func (r *loanRepository) ListOpenByUser(ctx context.Context, username string) ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND returned_at IS NULL", username).
		Order("borrowed_at").
		Find(&loans).Error
	if err != nil {
		return nil, apperrors.Store("list open loans", err)
	}
	return loans, nil
}

func (r *loanRepository) ListByUser(ctx context.Context, username string) ([]model.Loan, error) {
	var loans []model.Loan
	if err := r.db.WithContext(ctx).Where("user_id = ?", username).Order("borrowed_at").Find(&loans).Error; err != nil {
		return nil, apperrors.Store("list loans", err)
	}
	return loans, nil
}

func (r *loanRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.WithContext(ctx).
		Where("returned_at IS NULL AND due_at < ?", now).
		Order("due_at").
		Find(&loans).Error
	if err != nil {
		return nil, apperrors.Store("list overdue loans", err)
	}
	return loans, nil
}

func (r *loanRepository) DeleteByBook(ctx context.Context, bookID int64) error {
	return apperrors.Store("delete loans", r.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&model.Loan{}).Error)
}
