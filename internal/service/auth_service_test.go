package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_RoundTrip(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "")

	account, access, refresh, err := env.services.Auth.Login(ctx, "ana", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, account.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Empty(t, account.PasswordHash)
}

func TestLogin_UsernameIsCaseInsensitive(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registerAccount(t, env, "Ana", "")

	_, _, _, err := env.services.Auth.Login(ctx, "ana", "secret123")
	require.NoError(t, err)
}

func TestLogin_UniformFailure(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registerAccount(t, env, "ana", "")

	// Unknown username and wrong password must be indistinguishable.
	_, _, _, errUnknown := env.services.Auth.Login(ctx, "nobody", "secret123")
	_, _, _, errWrongPass := env.services.Auth.Login(ctx, "ana", "wrong")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPass)
}

func TestValidateToken_CarriesAccountID(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "")

	_, access, _, err := env.services.Auth.Login(ctx, "ana", "secret123")
	require.NoError(t, err)

	token, err := env.services.Auth.ValidateToken(access)
	require.NoError(t, err)

	accountID, err := env.services.Auth.GetAccountIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, accountID)
}

func TestRefreshToken_Rotates(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registerAccount(t, env, "ana", "")
	_, _, refresh, err := env.services.Auth.Login(ctx, "ana", "secret123")
	require.NoError(t, err)

	access2, refresh2, err := env.services.Auth.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEqual(t, refresh, refresh2)

	// The consumed refresh token is dead.
	_, _, err = env.services.Auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The rotated one still works.
	_, _, err = env.services.Auth.RefreshToken(ctx, refresh2)
	require.NoError(t, err)
}

func TestLogout_KillsRefreshAndSession(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "")
	_, _, refresh, err := env.services.Auth.Login(ctx, "ana", "secret123")
	require.NoError(t, err)

	sessionID, err := env.services.Auth.CreateSession(ctx, registered.ID)
	require.NoError(t, err)

	require.NoError(t, env.services.Auth.Logout(ctx, refresh, sessionID))

	_, _, err = env.services.Auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.services.Auth.ResolveSession(ctx, sessionID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveSession_ReturnsFreshAccount(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "")
	sessionID, err := env.services.Auth.CreateSession(ctx, registered.ID)
	require.NoError(t, err)

	account, err := env.services.Auth.ResolveSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, account.ID)
	assert.Empty(t, account.PasswordHash)
}

func TestCurrentAccount_UnknownIDIsUnauthorized(t *testing.T) {
	env := setupServices(t)

	_, err := env.services.Auth.CurrentAccount(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
