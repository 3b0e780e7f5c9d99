package service

import (
	"context"
	"fmt"
	"time"

	"librarydesk/internal/cache"
	"librarydesk/internal/model"
	"librarydesk/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserProfile is a user with their current number of open loans.
type UserProfile struct {
	model.User
	BorrowedCount int64 `json:"borrowed_count"`
}

// UserService exposes user lookups for patrons and librarians.
type UserService interface {
	GetUser(ctx context.Context, username string) (*model.User, error)
	GetProfile(ctx context.Context, username string) (*UserProfile, error)
	ListUsers(ctx context.Context) ([]UserProfile, error)
}

type userService struct {
	store repository.Store
	cache *cache.Client
}

// NewUserService builds a UserService with store and cache.
func NewUserService(store repository.Store, cache *cache.Client) UserService {
	return &userService{store: store, cache: cache}
}

func (s *userService) cacheKey(username string) string {
	return fmt.Sprintf("user:%s", username)
}

func (s *userService) GetUser(ctx context.Context, username string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(username), &cached) {
		return &cached, nil
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, s.cacheKey(username), user, userCacheTTL)
	return user, nil
}

// GetProfile returns the user with a live open loan count; only the user record is cached.
func (s *userService) GetProfile(ctx context.Context, username string) (*UserProfile, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	open, err := s.store.Loans().CountOpen(ctx, username)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: *user, BorrowedCount: open}, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]UserProfile, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserProfile, 0, len(users))
	for _, u := range users {
		open, err := s.store.Loans().CountOpen(ctx, u.Username)
		if err != nil {
			return nil, err
		}
		out = append(out, UserProfile{User: u, BorrowedCount: open})
	}
	return out, nil
}
