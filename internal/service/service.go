package service

import (
	"context"
	"errors"
	"time"

	"github.com/cancha-app/cancha-backend/internal/config"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already in use")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrJoinCodeInvalid    = errors.New("join code invalid")
	ErrAlreadyClaimed     = errors.New("entry already claimed")
	ErrAlreadyReviewed    = errors.New("claim already reviewed")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)

// SessionStore keeps opaque session ids mapped to account ids. The redis
// helpers in internal/db satisfy it; tests use an in-memory fake.
type SessionStore interface {
	SetSession(ctx context.Context, sessionID, accountID string, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	Account      AccountService
	Verification VerificationService
	Team         TeamService
	Claim        ClaimService
	Broadcaster  *socket.Broadcaster
	NotifSvc     *notification.Service
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Sessions    SessionStore
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	authService := NewAuthService(deps.Config, deps.Repos.AccountRepo, deps.Sessions)

	return &Services{
		Auth: authService,
		Account: NewAccountService(
			deps.Config,
			deps.Repos.AccountRepo,
			deps.Repos.TeamRepo,
			authService,
			deps.NotifSvc,
			deps.EmailSvc,
			deps.Broadcaster,
		),
		Verification: NewVerificationService(
			deps.Config,
			deps.Repos.AccountRepo,
			deps.NotifSvc,
			deps.EmailSvc,
		),
		Team: NewTeamService(
			deps.Repos.TeamRepo,
			deps.Repos.RosterRepo,
			deps.Broadcaster,
		),
		Claim: NewClaimService(
			deps.Config,
			deps.Repos.ClaimRepo,
			deps.Repos.RosterRepo,
			deps.Repos.TeamRepo,
			deps.Repos.AccountRepo,
			deps.NotifSvc,
			deps.EmailSvc,
			deps.Broadcaster,
		),
		Broadcaster: deps.Broadcaster,
		NotifSvc:    deps.NotifSvc,
	}
}
