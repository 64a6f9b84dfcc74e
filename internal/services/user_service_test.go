package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	testutil "github.com/talentlink/talentlink/internal/database/testutil"
	apperrors "github.com/talentlink/talentlink/pkg/errors"
)

func TestUserServiceCreateAndAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice@example.com", user.Email)
	require.True(t, user.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct horse")))

	authed, err := svc.Authenticate(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserServiceCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, CreateUserInput{Email: "x@example.com", Password: "short"})
	require.True(t, apperrors.IsValidation(err))

	appErr := err.(*apperrors.AppError)
	require.Contains(t, appErr.Fields, "name")
	require.Contains(t, appErr.Fields, "password")

	_, err = svc.Create(ctx, CreateUserInput{Name: "Bob", Email: "bob@example.com", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Name: "Bob Again", Email: "bob@example.com", Password: "long enough"})
	require.True(t, apperrors.IsValidation(err))
	appErr = err.(*apperrors.AppError)
	require.Contains(t, appErr.Fields, "email")
}

func TestUserServiceInactiveAccountCannotLogin(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{Name: "Carol", Email: "carol@example.com", Password: "long enough"})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = svc.Authenticate(ctx, "carol@example.com", "long enough")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
