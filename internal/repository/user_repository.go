package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrUserAlreadyExists
	}
	return apperrors.Store("create user", err)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(r.db.WithContext(ctx), "find user", username)
}

func (r *userRepository) FindByUsernameForUpdate(ctx context.Context, username string) (*model.User, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), "lock user", username)
}

func (r *userRepository) find(db *gorm.DB, op, username string) (*model.User, error) {
	var user model.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Store(op, err)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, apperrors.Store("check user", err)
	}
	return count > 0, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, apperrors.Store("list users", err)
	}
	return users, nil
}
