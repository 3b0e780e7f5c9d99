package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "librarydesk/internal/errors"
	"librarydesk/internal/model"
	"librarydesk/internal/repository/memstore"
)

func TestUserService_ProfilesCountOpenLoans(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Users().Create(ctx, &model.User{Username: "alice", Role: model.RoleUser, MaxBorrow: 5}))
	require.NoError(t, store.Users().Create(ctx, &model.User{Username: "bob", Role: model.RoleAdmin, MaxBorrow: 10}))
	now := time.Now().UTC()
	returned := now
	require.NoError(t, store.Loans().Create(ctx, &model.Loan{UserID: "alice", BookID: 1, BorrowedAt: now, DueAt: now}))
	require.NoError(t, store.Loans().Create(ctx, &model.Loan{UserID: "alice", BookID: 2, BorrowedAt: now, DueAt: now, ReturnedAt: &returned}))

	svc := NewUserService(store, nil)

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.BorrowedCount)

	all, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[1].Username)
	assert.Zero(t, all[1].BorrowedCount)

	_, err = svc.GetProfile(ctx, "carol")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
