package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cancha-app/cancha-backend/internal/config"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

// memSessionStore is an in-memory SessionStore for tests.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]string)}
}

func (s *memSessionStore) SetSession(ctx context.Context, sessionID, accountID string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = accountID
	return nil
}

func (s *memSessionStore) GetSession(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionID], nil
}

func (s *memSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

type testEnv struct {
	services *Services
	repos    *repository.Repositories
	sessions *memSessionStore
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     1,
		RefreshExpiry: 7,
		SessionTTL:    24,
		FrontendURL:   "http://localhost:3000",
		DefaultLang:   "es",
	}

	repos := repository.NewRepositories()
	sessions := newMemSessionStore()
	// An empty SMTP host means emails are logged and skipped.
	emailSvc := email.NewService(&email.Config{})
	notifSvc := notification.NewService(repos.NotificationRepo)

	services := NewServices(&ServiceDeps{
		Config:   cfg,
		Repos:    repos,
		Sessions: sessions,
		NotifSvc: notifSvc,
		EmailSvc: emailSvc,
	})

	return &testEnv{services: services, repos: repos, sessions: sessions}
}

func registerAccount(t *testing.T, env *testEnv, username string, emailAddr string) *repository.Account {
	t.Helper()
	input := RegisterInput{
		Username: username,
		Password: "secret123",
		FullName: "Test " + username,
	}
	if emailAddr != "" {
		input.Email = &emailAddr
	}
	account, _, _, err := env.services.Account.Register(context.Background(), input)
	require.NoError(t, err)
	return account
}
