package service

import (
	"context"
	"testing"
	"time"

	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmEmail_HappyPath(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "ana@example.com")

	stored, err := env.repos.AccountRepo.FindByID(ctx, registered.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationToken)

	account, err := env.services.Verification.ConfirmEmail(ctx, *stored.VerificationToken)
	require.NoError(t, err)
	assert.True(t, account.EmailVerified)
	assert.Nil(t, account.VerificationToken)
	assert.Empty(t, account.PasswordHash)
}

func TestConfirmEmail_NotifiesAccount(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "ana@example.com")
	stored, _ := env.repos.AccountRepo.FindByID(ctx, registered.ID)

	_, err := env.services.Verification.ConfirmEmail(ctx, *stored.VerificationToken)
	require.NoError(t, err)

	notifications, err := env.repos.NotificationRepo.FindByAccount(ctx, registered.ID, true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, notification.TypeEmailVerified, notifications[0].Type)
}

func TestConfirmEmail_TokenIsSingleUse(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "ana@example.com")
	stored, _ := env.repos.AccountRepo.FindByID(ctx, registered.ID)
	tok := *stored.VerificationToken

	_, err := env.services.Verification.ConfirmEmail(ctx, tok)
	require.NoError(t, err)

	_, err = env.services.Verification.ConfirmEmail(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmEmail_UnknownToken(t *testing.T) {
	env := setupServices(t)

	_, err := env.services.Verification.ConfirmEmail(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.services.Verification.ConfirmEmail(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmEmail_ExpiredTokenIsClearedAtDetection(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "ana@example.com")

	// Backdate the token past its window.
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, env.repos.AccountRepo.SetVerificationToken(ctx, registered.ID, "old-token", expired))

	_, err := env.services.Verification.ConfirmEmail(ctx, "old-token")
	assert.ErrorIs(t, err, ErrTokenExpired)

	// The expired token no longer matches anything.
	_, err = env.services.Verification.ConfirmEmail(ctx, "old-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	stored, _ := env.repos.AccountRepo.FindByID(ctx, registered.ID)
	assert.Nil(t, stored.VerificationToken)
	assert.False(t, stored.EmailVerified)
}

func TestRequestEmailVerification_ReplacesOutstandingToken(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "ana@example.com")
	before, _ := env.repos.AccountRepo.FindByID(ctx, registered.ID)
	oldToken := *before.VerificationToken

	require.NoError(t, env.services.Verification.RequestEmailVerification(ctx, registered.ID, email.LangES))

	after, _ := env.repos.AccountRepo.FindByID(ctx, registered.ID)
	require.NotNil(t, after.VerificationToken)
	assert.NotEqual(t, oldToken, *after.VerificationToken)

	// The replaced token is dead.
	_, err := env.services.Verification.ConfirmEmail(ctx, oldToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequestEmailVerification_NoEmailOnAccount(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "")

	err := env.services.Verification.RequestEmailVerification(ctx, registered.ID, email.LangES)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRequestPasswordReset_UnknownEmailLooksLikeSuccess(t *testing.T) {
	env := setupServices(t)

	err := env.services.Verification.RequestPasswordReset(context.Background(), "nobody@example.com", email.LangES)
	assert.NoError(t, err)
}

func TestResetPassword_FullFlow(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "ana@example.com")

	require.NoError(t, env.services.Verification.RequestPasswordReset(ctx, "ana@example.com", email.LangES))

	stored, _ := env.repos.AccountRepo.FindByID(ctx, registered.ID)
	require.NotNil(t, stored.ResetToken)
	tok := *stored.ResetToken

	// Login still works with the old password while the token is unused.
	_, _, refresh, err := env.services.Auth.Login(ctx, "ana", "secret123")
	require.NoError(t, err)

	require.NoError(t, env.services.Verification.ResetPassword(ctx, tok, "brandnew456"))

	// Old password is out, new one is in.
	_, _, _, err = env.services.Auth.Login(ctx, "ana", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, _, err = env.services.Auth.Login(ctx, "ana", "brandnew456")
	require.NoError(t, err)

	// Refresh tokens issued before the reset are revoked.
	_, _, err = env.services.Auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The reset token is single use.
	err = env.services.Verification.ResetPassword(ctx, tok, "again789")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "ana@example.com")

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, env.repos.AccountRepo.SetResetToken(ctx, registered.ID, "old-reset", expired))

	err := env.services.Verification.ResetPassword(ctx, "old-reset", "newpass123")
	assert.ErrorIs(t, err, ErrTokenExpired)

	err = env.services.Verification.ResetPassword(ctx, "old-reset", "newpass123")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Password unchanged throughout.
	_, _, _, err = env.services.Auth.Login(ctx, "ana", "secret123")
	require.NoError(t, err)
}
