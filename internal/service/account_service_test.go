package service

import (
	"context"
	"testing"

	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ReturnsSanitizedAccountAndTokens(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	addr := "ana@example.com"
	account, access, refresh, err := env.services.Account.Register(ctx, RegisterInput{
		Username: "ana",
		Password: "secret123",
		FullName: "Ana Pérez",
		Email:    &addr,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Empty(t, account.PasswordHash)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.False(t, account.EmailVerified)

	// A verification token was issued for the email.
	stored, err := env.repos.AccountRepo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationToken)
	require.NotNil(t, stored.VerificationTokenExpires)
}

func TestRegister_RejectsEmptyUsernameOrPassword(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, _, _, err := env.services.Account.Register(ctx, RegisterInput{Username: "", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, _, err = env.services.Account.Register(ctx, RegisterInput{Username: "ana", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registerAccount(t, env, "ana", "")

	_, _, _, err := env.services.Account.Register(ctx, RegisterInput{
		Username: "ANA",
		Password: "other456",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registerAccount(t, env, "ana", "ana@example.com")

	addr := "Ana@Example.com"
	_, _, _, err := env.services.Account.Register(ctx, RegisterInput{
		Username: "otra",
		Password: "other456",
		Email:    &addr,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_WithJoinCode(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	manager := registerAccount(t, env, "coach", "")
	team, err := env.services.Team.Create(ctx, "Las Águilas", manager.ID)
	require.NoError(t, err)

	account, _, _, err := env.services.Account.Register(ctx, RegisterInput{
		Username: "ana",
		Password: "secret123",
		JoinCode: team.JoinCode,
	})
	require.NoError(t, err)

	member, err := env.repos.TeamRepo.FindMember(ctx, team.ID, account.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, "member", member.Role)
}

func TestRegister_BadJoinCodeDoesNotFailRegistration(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	account, _, _, err := env.services.Account.Register(ctx, RegisterInput{
		Username: "ana",
		Password: "secret123",
		JoinCode: "ZZZZZZ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
}

func TestJoinByCode_Idempotent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	manager := registerAccount(t, env, "coach", "")
	team, err := env.services.Team.Create(ctx, "Las Águilas", manager.ID)
	require.NoError(t, err)

	player := registerAccount(t, env, "ana", "")

	first, err := env.services.Account.JoinByCode(ctx, player.ID, team.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, team.ID, first.ID)

	// Joining again returns the team without a second membership.
	second, err := env.services.Account.JoinByCode(ctx, player.ID, team.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, team.ID, second.ID)

	members, err := env.repos.TeamRepo.FindMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2) // manager + player
}

func TestJoinByCode_NotifiesManagers(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	manager := registerAccount(t, env, "coach", "")
	team, err := env.services.Team.Create(ctx, "Las Águilas", manager.ID)
	require.NoError(t, err)

	player := registerAccount(t, env, "ana", "")

	_, err = env.services.Account.JoinByCode(ctx, player.ID, team.JoinCode)
	require.NoError(t, err)

	notifications, err := env.repos.NotificationRepo.FindByAccount(ctx, manager.ID, true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, notification.TypeMemberJoined, notifications[0].Type)

	// The joiner gets no notification about their own join.
	own, err := env.repos.NotificationRepo.FindByAccount(ctx, player.ID, true)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestJoinByCode_InvalidCode(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	player := registerAccount(t, env, "ana", "")

	_, err := env.services.Account.JoinByCode(ctx, player.ID, "nope")
	assert.ErrorIs(t, err, ErrJoinCodeInvalid)

	_, err = env.services.Account.JoinByCode(ctx, player.ID, "AAAAAA")
	assert.ErrorIs(t, err, ErrJoinCodeInvalid)
}

func TestGetByID_Sanitized(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered := registerAccount(t, env, "ana", "")

	account, err := env.services.Account.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Empty(t, account.PasswordHash)

	_, err = env.services.Account.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
