package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cancha-app/cancha-backend/internal/config"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/cancha-app/cancha-backend/internal/password"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/socket"
	"github.com/cancha-app/cancha-backend/internal/token"
)

// ============================================
// Account Service
// ============================================

const verificationTokenHours = 24

type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    *string
	JoinCode string
	Lang     email.Lang
}

type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*repository.Account, string, string, error)
	GetByID(ctx context.Context, id string) (*repository.Account, error)
	JoinByCode(ctx context.Context, accountID, code string) (*repository.Team, error)
}

type accountService struct {
	cfg         *config.Config
	accountRepo repository.AccountRepository
	teamRepo    repository.TeamRepository
	auth        AuthService
	notifSvc    *notification.Service
	emailSvc    *email.Service
	broadcaster *socket.Broadcaster
}

func NewAccountService(
	cfg *config.Config,
	accountRepo repository.AccountRepository,
	teamRepo repository.TeamRepository,
	auth AuthService,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) AccountService {
	return &accountService{
		cfg:         cfg,
		accountRepo: accountRepo,
		teamRepo:    teamRepo,
		auth:        auth,
		notifSvc:    notifSvc,
		emailSvc:    emailSvc,
		broadcaster: broadcaster,
	}
}

// Register creates the account, optionally joins a team by code and kicks
// off email verification. The plaintext password is hashed before anything
// is persisted and never stored.
func (s *accountService) Register(ctx context.Context, input RegisterInput) (*repository.Account, string, string, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Username == "" || input.Password == "" {
		return nil, "", "", ErrInvalidInput
	}

	existing, err := s.accountRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, "", "", ErrUsernameTaken
	}
	if input.Email != nil && *input.Email != "" {
		existing, err := s.accountRepo.FindByEmail(ctx, *input.Email)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil {
			return nil, "", "", ErrEmailTaken
		}
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	account := &repository.Account{
		Username:     input.Username,
		PasswordHash: hashed,
		FullName:     input.FullName,
		Role:         repository.RolePlayer,
	}

	var verificationToken string
	if input.Email != nil && *input.Email != "" {
		addr := strings.TrimSpace(*input.Email)
		account.Email = &addr

		verificationToken, err = token.New(32)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to generate token: %w", err)
		}
		expires := token.ExpiryFromNow(verificationTokenHours)
		account.VerificationToken = &verificationToken
		account.VerificationTokenExpires = &expires
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		// Pre-checks race with concurrent registrations; the unique
		// indexes are the source of truth.
		if repository.IsConflict(err, repository.ConstraintAccountsUsername) {
			return nil, "", "", ErrUsernameTaken
		}
		if repository.IsConflict(err, repository.ConstraintAccountsEmail) {
			return nil, "", "", ErrEmailTaken
		}
		return nil, "", "", fmt.Errorf("failed to create account: %w", err)
	}

	// A bad join code never fails registration.
	if input.JoinCode != "" {
		if _, err := s.JoinByCode(ctx, account.ID, input.JoinCode); err != nil {
			log.Printf("[Account] ⚠️ Join code ignored for %s: %v", account.Username, err)
		}
	}

	if account.Email != nil {
		s.sendVerificationEmail(account, verificationToken, input.Lang)
	}

	accessToken, refreshToken, err := s.auth.IssueTokens(ctx, account.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return account.Sanitized(), accessToken, refreshToken, nil
}

func (s *accountService) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account.Sanitized(), nil
}

// JoinByCode adds the account to the team behind a join code. Joining a
// team twice is a no-op that returns the team.
func (s *accountService) JoinByCode(ctx context.Context, accountID, code string) (*repository.Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != token.JoinCodeLength {
		return nil, ErrJoinCodeInvalid
	}

	team, err := s.teamRepo.FindByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrJoinCodeInvalid
	}

	member := &repository.TeamMembership{
		TeamID:    team.ID,
		AccountID: accountID,
		Role:      repository.TeamRoleMember,
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		if repository.IsConflict(err, repository.ConstraintMembershipPair) {
			return team, nil
		}
		return nil, err
	}

	s.notifyMemberJoined(ctx, team, accountID)

	return team, nil
}

// notifyMemberJoined tells the managers and the team room about a new
// membership. Failures are logged, never surfaced to the joiner.
func (s *accountService) notifyMemberJoined(ctx context.Context, team *repository.Team, accountID string) {
	memberName := accountID
	if account, err := s.accountRepo.FindByID(ctx, accountID); err == nil && account != nil {
		memberName = account.FullName
		if memberName == "" {
			memberName = account.Username
		}
	}

	if s.notifSvc != nil {
		managerIDs, err := s.teamRepo.FindManagerIDs(ctx, team.ID)
		if err != nil {
			log.Printf("[Account] ⚠️ Failed to load managers for team %s: %v", team.ID, err)
		} else if err := s.notifSvc.SendMemberJoined(ctx, managerIDs, memberName, team.Name); err != nil {
			log.Printf("[Account] ⚠️ Failed to notify managers: %v", err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberJoined(team.ID, map[string]interface{}{
			"teamId":     team.ID,
			"accountId":  accountID,
			"memberName": memberName,
		})
	}
}

func (s *accountService) sendVerificationEmail(account *repository.Account, verificationToken string, lang email.Lang) {
	to := *account.Email
	name := account.FullName
	if name == "" {
		name = account.Username
	}
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.FrontendURL, verificationToken)

	go func() {
		err := s.emailSvc.SendEmailVerification(to, lang, email.VerificationEmailData{
			Name:      name,
			VerifyURL: verifyURL,
		})
		if err != nil {
			log.Printf("[Email] ❌ Failed to send verification email to %s: %v", to, err)
		}
	}()
}
