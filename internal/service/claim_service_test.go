package service

import (
	"context"
	"testing"

	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type claimFixture struct {
	env     *testEnv
	manager *repository.Account
	player  *repository.Account
	team    *repository.Team
	entry   *repository.RosterEntry
}

func setupClaim(t *testing.T) *claimFixture {
	t.Helper()
	env := setupServices(t)
	ctx := context.Background()

	manager := registerAccount(t, env, "coach", "")
	team, err := env.services.Team.Create(ctx, "Las Águilas", manager.ID)
	require.NoError(t, err)

	entry, err := env.services.Team.AddRosterEntry(ctx, team.ID, manager.ID, "Ana Pérez", nil)
	require.NoError(t, err)

	player := registerAccount(t, env, "ana", "ana@example.com")
	_, err = env.services.Account.JoinByCode(ctx, player.ID, team.JoinCode)
	require.NoError(t, err)

	return &claimFixture{env: env, manager: manager, player: player, team: team, entry: entry}
}

func TestClaim_ApproveBindsRosterEntry(t *testing.T) {
	f := setupClaim(t)
	ctx := context.Background()

	claim, err := f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.ClaimStatusPending, claim.Status)

	approved, err := f.env.services.Claim.Approve(ctx, claim.ID, f.manager.ID, email.LangES)
	require.NoError(t, err)
	assert.Equal(t, repository.ClaimStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewerID)
	assert.Equal(t, f.manager.ID, *approved.ReviewerID)
	assert.NotNil(t, approved.ReviewedAt)

	entry, err := f.env.repos.RosterRepo.FindByID(ctx, f.entry.ID)
	require.NoError(t, err)
	assert.True(t, entry.Verified)
	require.NotNil(t, entry.AccountID)
	assert.Equal(t, f.player.ID, *entry.AccountID)
}

func TestClaim_DuplicatePendingRejected(t *testing.T) {
	f := setupClaim(t)
	ctx := context.Background()

	_, err := f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)

	_, err = f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaim_RejectedClaimCanBeRetried(t *testing.T) {
	f := setupClaim(t)
	ctx := context.Background()

	claim, err := f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)

	rejected, err := f.env.services.Claim.Reject(ctx, claim.ID, f.manager.ID, "wrong person", email.LangES)
	require.NoError(t, err)
	assert.Equal(t, repository.ClaimStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "wrong person", *rejected.RejectionReason)

	// Only pending claims block a new one.
	_, err = f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)
}

func TestClaim_VerifiedEntryCannotBeClaimed(t *testing.T) {
	f := setupClaim(t)
	ctx := context.Background()

	claim, err := f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)
	_, err = f.env.services.Claim.Approve(ctx, claim.ID, f.manager.ID, email.LangES)
	require.NoError(t, err)

	other := registerAccount(t, f.env, "otra", "")
	_, err = f.env.services.Claim.Create(ctx, other.ID, f.entry.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaim_DecidedOnlyOnce(t *testing.T) {
	f := setupClaim(t)
	ctx := context.Background()

	claim, err := f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)

	_, err = f.env.services.Claim.Approve(ctx, claim.ID, f.manager.ID, email.LangES)
	require.NoError(t, err)

	_, err = f.env.services.Claim.Approve(ctx, claim.ID, f.manager.ID, email.LangES)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	_, err = f.env.services.Claim.Reject(ctx, claim.ID, f.manager.ID, "too late", email.LangES)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestClaim_ReviewRequiresManager(t *testing.T) {
	f := setupClaim(t)
	ctx := context.Background()

	claim, err := f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)

	// The claimant is a plain member, not a manager.
	_, err = f.env.services.Claim.Approve(ctx, claim.ID, f.player.ID, email.LangES)
	assert.ErrorIs(t, err, ErrForbidden)

	outsider := registerAccount(t, f.env, "otro", "")
	_, err = f.env.services.Claim.Reject(ctx, claim.ID, outsider.ID, "", email.LangES)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClaim_ListPendingByTeam(t *testing.T) {
	f := setupClaim(t)
	ctx := context.Background()

	_, err := f.env.services.Claim.Create(ctx, f.player.ID, f.entry.ID)
	require.NoError(t, err)

	pending, err := f.env.services.Claim.ListPendingByTeam(ctx, f.team.ID, f.manager.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.env.services.Claim.ListPendingByTeam(ctx, f.team.ID, f.player.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClaim_UnknownEntry(t *testing.T) {
	f := setupClaim(t)

	_, err := f.env.services.Claim.Create(context.Background(), f.player.ID, "missing-entry")
	assert.ErrorIs(t, err, ErrNotFound)
}
