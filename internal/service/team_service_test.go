package service

import (
	"context"
	"strings"
	"testing"

	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamCreate_CreatorBecomesManager(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	creator := registerAccount(t, env, "coach", "")

	team, err := env.services.Team.Create(ctx, "Las Águilas", creator.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, team.ID)
	assert.Len(t, team.JoinCode, token.JoinCodeLength)

	for _, r := range team.JoinCode {
		assert.True(t, strings.ContainsRune("ABCDEFGHJKMNPQRSTUVWXYZ23456789", r),
			"join code contains banned glyph %q", r)
	}

	member, err := env.repos.TeamRepo.FindMember(ctx, team.ID, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, repository.TeamRoleManager, member.Role)
}

func TestTeamCreate_EmptyName(t *testing.T) {
	env := setupServices(t)

	creator := registerAccount(t, env, "coach", "")
	_, err := env.services.Team.Create(context.Background(), "  ", creator.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegenerateJoinCode_InvalidatesOldCode(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	creator := registerAccount(t, env, "coach", "")
	team, err := env.services.Team.Create(ctx, "Las Águilas", creator.ID)
	require.NoError(t, err)
	oldCode := team.JoinCode

	updated, err := env.services.Team.RegenerateJoinCode(ctx, team.ID, creator.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldCode, updated.JoinCode)

	_, err = env.services.Team.GetByJoinCode(ctx, oldCode)
	assert.ErrorIs(t, err, ErrJoinCodeInvalid)

	found, err := env.services.Team.GetByJoinCode(ctx, updated.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, team.ID, found.ID)
}

func TestRegenerateJoinCode_RequiresManager(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	creator := registerAccount(t, env, "coach", "")
	team, err := env.services.Team.Create(ctx, "Las Águilas", creator.ID)
	require.NoError(t, err)

	player := registerAccount(t, env, "ana", "")
	_, err = env.services.Account.JoinByCode(ctx, player.ID, team.JoinCode)
	require.NoError(t, err)

	_, err = env.services.Team.RegenerateJoinCode(ctx, team.ID, player.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	outsider := registerAccount(t, env, "otro", "")
	_, err = env.services.Team.RegenerateJoinCode(ctx, team.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAddRosterEntry_ManagerOnly(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	creator := registerAccount(t, env, "coach", "")
	team, err := env.services.Team.Create(ctx, "Las Águilas", creator.ID)
	require.NoError(t, err)

	shirt := 10
	entry, err := env.services.Team.AddRosterEntry(ctx, team.ID, creator.ID, "Ana Pérez", &shirt)
	require.NoError(t, err)
	assert.False(t, entry.Verified)
	assert.Nil(t, entry.AccountID)

	player := registerAccount(t, env, "ana", "")
	_, err = env.services.Account.JoinByCode(ctx, player.ID, team.JoinCode)
	require.NoError(t, err)

	_, err = env.services.Team.AddRosterEntry(ctx, team.ID, player.ID, "Otro Jugador", nil)
	assert.ErrorIs(t, err, ErrForbidden)

	roster, err := env.services.Team.Roster(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}
