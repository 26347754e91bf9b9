package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cancha-app/cancha-backend/internal/config"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/cancha-app/cancha-backend/internal/password"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/token"
)

// ============================================
// Verification Service
// ============================================

const resetTokenHours = 1

// VerificationService drives the email confirmation and password reset
// flows. Tokens are single use: consumption happens through conditional
// writes, so a token that was already used or replaced reads as invalid.
type VerificationService interface {
	RequestEmailVerification(ctx context.Context, accountID string, lang email.Lang) error
	ConfirmEmail(ctx context.Context, verificationToken string) (*repository.Account, error)
	RequestPasswordReset(ctx context.Context, emailAddr string, lang email.Lang) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

type verificationService struct {
	cfg         *config.Config
	accountRepo repository.AccountRepository
	notifSvc    *notification.Service
	emailSvc    *email.Service
}

func NewVerificationService(
	cfg *config.Config,
	accountRepo repository.AccountRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
) VerificationService {
	return &verificationService{cfg: cfg, accountRepo: accountRepo, notifSvc: notifSvc, emailSvc: emailSvc}
}

// RequestEmailVerification issues a fresh 24h token, replacing any
// outstanding one. Already verified accounts are a no-op.
func (s *verificationService) RequestEmailVerification(ctx context.Context, accountID string, lang email.Lang) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if account.Email == nil {
		return ErrInvalidInput
	}
	if account.EmailVerified {
		return nil
	}

	verificationToken, err := token.New(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	expires := token.ExpiryFromNow(verificationTokenHours)

	if err := s.accountRepo.SetVerificationToken(ctx, account.ID, verificationToken, expires); err != nil {
		return err
	}

	s.sendVerification(account, verificationToken, lang)
	return nil
}

func (s *verificationService) ConfirmEmail(ctx context.Context, verificationToken string) (*repository.Account, error) {
	if verificationToken == "" {
		return nil, ErrInvalidToken
	}

	account, err := s.accountRepo.FindByVerificationToken(ctx, verificationToken)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidToken
	}

	if account.VerificationTokenExpires != nil && time.Now().After(*account.VerificationTokenExpires) {
		// Clear the dead token so the row does not keep matching. If the
		// clear loses a race the token was already consumed or replaced.
		cleared, err := s.accountRepo.ClearVerificationToken(ctx, account.ID, verificationToken)
		if err != nil {
			return nil, err
		}
		if !cleared {
			return nil, ErrInvalidToken
		}
		return nil, ErrTokenExpired
	}

	ok, err := s.accountRepo.MarkEmailVerified(ctx, account.ID, verificationToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	account.EmailVerified = true
	account.VerificationToken = nil
	account.VerificationTokenExpires = nil

	if s.notifSvc != nil {
		if err := s.notifSvc.SendEmailVerified(ctx, account.ID); err != nil {
			log.Printf("[Auth] ⚠️ Failed to notify %s about verification: %v", account.ID, err)
		}
	}

	return account.Sanitized(), nil
}

// RequestPasswordReset looks the same to the caller whether or not the
// email belongs to an account.
func (s *verificationService) RequestPasswordReset(ctx context.Context, emailAddr string, lang email.Lang) error {
	if emailAddr == "" {
		return nil
	}

	account, err := s.accountRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if account == nil {
		log.Printf("[Auth] Password reset requested for unknown email")
		return nil
	}

	resetToken, err := token.New(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	expires := token.ExpiryFromNow(resetTokenHours)

	if err := s.accountRepo.SetResetToken(ctx, account.ID, resetToken, expires); err != nil {
		return err
	}

	name := account.FullName
	if name == "" {
		name = account.Username
	}
	to := *account.Email
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, resetToken)

	go func() {
		err := s.emailSvc.SendPasswordReset(to, lang, email.PasswordResetEmailData{
			Name:     name,
			ResetURL: resetURL,
		})
		if err != nil {
			log.Printf("[Email] ❌ Failed to send password reset email to %s: %v", to, err)
		}
	}()

	return nil
}

func (s *verificationService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return ErrInvalidToken
	}

	account, err := s.accountRepo.FindByResetToken(ctx, resetToken)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrInvalidToken
	}

	if account.ResetTokenExpires != nil && time.Now().After(*account.ResetTokenExpires) {
		cleared, err := s.accountRepo.ClearResetToken(ctx, account.ID, resetToken)
		if err != nil {
			return err
		}
		if !cleared {
			return ErrInvalidToken
		}
		return ErrTokenExpired
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ok, err := s.accountRepo.UpdatePasswordByResetToken(ctx, account.ID, hashed, resetToken)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidToken
	}

	// Every open refresh token dies with the old password.
	if err := s.accountRepo.DeleteAccountRefreshTokens(ctx, account.ID); err != nil {
		log.Printf("[Auth] ⚠️ Failed to revoke refresh tokens for %s: %v", account.ID, err)
	}

	return nil
}

func (s *verificationService) sendVerification(account *repository.Account, verificationToken string, lang email.Lang) {
	name := account.FullName
	if name == "" {
		name = account.Username
	}
	to := *account.Email
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
