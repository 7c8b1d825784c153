package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchtalk/sketchtalk/pkg/apperror"
)

func TestGetUserByUsername(t *testing.T) {
	f := newDiscussionFixture(t)
	svc := NewUserService(f.userRepo)

	user, err := svc.GetUserByUsername(context.Background(), "sketcher")
	require.NoError(t, err)
	assert.Equal(t, "sketcher", user.Username)
	// Public profile lookups never expose the email.
	assert.Empty(t, user.Email)

	_, err = svc.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetUser_IncludesEmail(t *testing.T) {
	f := newDiscussionFixture(t)
	svc := NewUserService(f.userRepo)
	ctx := context.Background()

	stored, err := f.userRepo.FindByID(ctx, f.author.String())
	require.NoError(t, err)
	stored.Email = "sketcher@example.com"

	user, err := svc.GetUser(ctx, f.author)
	require.NoError(t, err)
	assert.Equal(t, "sketcher@example.com", user.Email)
}

func TestDisableUser(t *testing.T) {
	f := newDiscussionFixture(t)
	svc := NewUserService(f.userRepo)
	ctx := context.Background()

	require.NoError(t, svc.DisableUser(ctx, f.member, f.admin))

	disabled, err := f.userRepo.FindByID(ctx, f.member.String())
	require.NoError(t, err)
	assert.True(t, disabled.Disabled)
}

func TestDisableUser_RequiresAdmin(t *testing.T) {
	f := newDiscussionFixture(t)
	svc := NewUserService(f.userRepo)

	err := svc.DisableUser(context.Background(), f.member, f.author)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDisableUser_NeverSelf(t *testing.T) {
	f := newDiscussionFixture(t)
	svc := NewUserService(f.userRepo)

	err := svc.DisableUser(context.Background(), f.admin, f.admin)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDisableUser_TargetMissing(t *testing.T) {
	f := newDiscussionFixture(t)
	svc := NewUserService(f.userRepo)

	err := svc.DisableUser(context.Background(), uuid.New(), f.admin)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetUsers_ExcludesDisabled(t *testing.T) {
	f := newDiscussionFixture(t)
	svc := NewUserService(f.userRepo)
	ctx := context.Background()

	require.NoError(t, svc.DisableUser(ctx, f.member, f.admin))

	users, err := svc.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, "bystander", u.Username)
	}
}
