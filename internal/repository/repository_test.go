// internal/repository/repository_test.go
package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAccountRepo(t *testing.T) (pgxmock.PgxPoolIface, AccountRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &pgAccountRepository{pool: mock}
}

func setupClaimRepo(t *testing.T) (pgxmock.PgxPoolIface, ClaimRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &pgClaimRepository{pool: mock}
}

func TestAccountCreate_UniqueViolationMapsToConflict(t *testing.T) {
	mock, repo := setupAccountRepo(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("ana", "hash", "Ana Pérez", pgxmock.AnyArg(), RolePlayer, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: ConstraintAccountsUsername})

	err := repo.Create(context.Background(), &Account{
		Username:     "ana",
		PasswordHash: "hash",
		FullName:     "Ana Pérez",
		Role:         RolePlayer,
	})
	require.Error(t, err)
	assert.True(t, IsConflict(err, ConstraintAccountsUsername))
	assert.False(t, IsConflict(err, ConstraintAccountsEmail))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkEmailVerified_TokenMatchWins(t *testing.T) {
	mock, repo := setupAccountRepo(t)

	mock.ExpectExec("UPDATE accounts").
		WithArgs("acc-1", "tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.MarkEmailVerified(context.Background(), "acc-1", "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkEmailVerified_StaleTokenLoses(t *testing.T) {
	mock, repo := setupAccountRepo(t)

	// The row was already consumed by another caller, so the
	// conditional update touches nothing.
	mock.ExpectExec("UPDATE accounts").
		WithArgs("acc-1", "tok-stale").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.MarkEmailVerified(context.Background(), "acc-1", "tok-stale")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordByResetToken_ConditionalWrite(t *testing.T) {
	mock, repo := setupAccountRepo(t)

	mock.ExpectExec("UPDATE accounts").
		WithArgs("acc-1", "newhash", "reset-tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.UpdatePasswordByResetToken(context.Background(), "acc-1", "newhash", "reset-tok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimApprove_BindsEntryInTransaction(t *testing.T) {
	mock, repo := setupClaimRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE member_claims").
		WithArgs("claim-1", ClaimStatusApproved, "mgr-1", ClaimStatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"roster_entry_id", "account_id"}).
			AddRow("entry-1", "acc-1"))
	mock.ExpectExec("UPDATE roster_entries").
		WithArgs("entry-1", "acc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	ok, err := repo.Approve(context.Background(), "claim-1", "mgr-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimApprove_AlreadyReviewedRollsBack(t *testing.T) {
	mock, repo := setupClaimRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE member_claims").
		WithArgs("claim-1", ClaimStatusApproved, "mgr-2", ClaimStatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"roster_entry_id", "account_id"}))
	mock.ExpectRollback()

	ok, err := repo.Approve(context.Background(), "claim-1", "mgr-2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func setupNotificationRepo(t *testing.T) (pgxmock.PgxPoolIface, NotificationRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &pgNotificationRepository{pool: mock}
}

func TestNotificationMarkAsRead_OwnerOnly(t *testing.T) {
	mock, repo := setupNotificationRepo(t)

	mock.ExpectExec("UPDATE notifications").
		WithArgs("notif-1", "acc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.MarkAsRead(context.Background(), "notif-1", "acc-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkAsRead_ForeignAccountTouchesNothing(t *testing.T) {
	mock, repo := setupNotificationRepo(t)

	mock.ExpectExec("UPDATE notifications").
		WithArgs("notif-1", "acc-other").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.MarkAsRead(context.Background(), "notif-1", "acc-other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimReject_PendingOnly(t *testing.T) {
	mock, repo := setupClaimRepo(t)

	mock.ExpectExec("UPDATE member_claims").
		WithArgs("claim-1", ClaimStatusRejected, "mgr-1", "wrong person", ClaimStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.Reject(context.Background(), "claim-1", "mgr-1", "wrong person")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
