package notification

import (
	"context"
	"testing"

	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	repos := repository.NewRepositories()
	return NewService(repos.NotificationRepo)
}

func TestMarkAsRead_OwnNotification(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendClaimApproved(ctx, "acc-1", "Los Tigres"))

	notifications, err := svc.List(ctx, "acc-1", true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	ok, err := svc.MarkAsRead(ctx, notifications[0].ID, "acc-1")
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err := svc.List(ctx, "acc-1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkAsRead_ForeignNotificationRefused(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendClaimApproved(ctx, "acc-1", "Los Tigres"))

	notifications, err := svc.List(ctx, "acc-1", true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	// Knowing the id is not enough, the row stays unread.
	ok, err := svc.MarkAsRead(ctx, notifications[0].ID, "acc-intruder")
	require.NoError(t, err)
	assert.False(t, ok)

	unread, err := svc.List(ctx, "acc-1", true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestSendMemberJoined_NotifiesEveryManager(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	err := svc.SendMemberJoined(ctx, []string{"mgr-1", "mgr-2"}, "Ana", "Los Tigres")
	require.NoError(t, err)

	for _, id := range []string{"mgr-1", "mgr-2"} {
		notifications, err := svc.List(ctx, id, false)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, TypeMemberJoined, notifications[0].Type)
	}
}

func TestSendEmailVerified(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendEmailVerified(ctx, "acc-1"))

	notifications, err := svc.List(ctx, "acc-1", false)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, TypeEmailVerified, notifications[0].Type)
}
