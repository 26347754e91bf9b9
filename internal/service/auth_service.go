package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cancha-app/cancha-backend/internal/config"
	"github.com/cancha-app/cancha-backend/internal/password"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ============================================
// Auth Service
// ============================================

type AuthService interface {
	Login(ctx context.Context, username, plaintext string) (*repository.Account, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken, sessionID string) error
	IssueTokens(ctx context.Context, accountID string) (string, string, error)
	ValidateToken(token string) (*jwt.Token, error)
	GetAccountIDFromToken(token *jwt.Token) (string, error)
	CreateSession(ctx context.Context, accountID string) (string, error)
	ResolveSession(ctx context.Context, sessionID string) (*repository.Account, error)
	CurrentAccount(ctx context.Context, accountID string) (*repository.Account, error)
}

type authService struct {
	cfg         *config.Config
	accountRepo repository.AccountRepository
	sessions    SessionStore
}

func NewAuthService(cfg *config.Config, accountRepo repository.AccountRepository, sessions SessionStore) AuthService {
	return &authService{cfg: cfg, accountRepo: accountRepo, sessions: sessions}
}

// Login verifies credentials and mints a token pair. Unknown username and
// wrong password produce the same error so callers cannot probe for
// accounts.
func (s *authService) Login(ctx context.Context, username, plaintext string) (*repository.Account, string, string, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil || account == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !password.Verify(plaintext, account.PasswordHash) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.IssueTokens(ctx, account.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return account.Sanitized(), accessToken, refreshToken, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	rt, err := s.accountRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil || rt == nil {
		return "", "", ErrInvalidToken
	}

	if time.Now().After(rt.ExpiresAt) {
		s.accountRepo.DeleteRefreshToken(ctx, refreshToken)
		return "", "", ErrInvalidToken
	}

	s.accountRepo.DeleteRefreshToken(ctx, refreshToken)

	accessToken, newRefreshToken, err := s.IssueTokens(ctx, rt.AccountID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken, sessionID string) error {
	if sessionID != "" {
		s.sessions.DeleteSession(ctx, sessionID)
	}
	return s.accountRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) GetAccountIDFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	accountID, ok := claims["sub"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return accountID, nil
}

// CreateSession stores an opaque session id in redis. The session carries
// nothing but the account id; everything else is resolved per request.
func (s *authService) CreateSession(ctx context.Context, accountID string) (string, error) {
	sessionID := uuid.New().String()
	ttl := time.Hour * time.Duration(s.cfg.SessionTTL)
	if err := s.sessions.SetSession(ctx, sessionID, accountID, ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *authService) ResolveSession(ctx context.Context, sessionID string) (*repository.Account, error) {
	accountID, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, ErrUnauthorized
	}
	return s.CurrentAccount(ctx, accountID)
}

// CurrentAccount re-fetches the account on every call so revoked or
// deleted accounts drop out immediately. The returned copy never carries
// the password hash.
func (s *authService) CurrentAccount(ctx context.Context, accountID string) (*repository.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUnauthorized
	}
	return account.Sanitized(), nil
}

func (s *authService) IssueTokens(ctx context.Context, accountID string) (string, string, error) {
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": accountID,
		"exp": time.Now().Add(time.Hour * time.Duration(s.cfg.JWTExpiry)).Unix(),
		"iat": time.Now().Unix(),
	})

	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenString := uuid.New().String()
	refreshTokenExpiry := time.Now().Add(time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry))

	rt := &repository.RefreshToken{
		Token:     refreshTokenString,
		AccountID: accountID,
		ExpiresAt: refreshTokenExpiry,
	}

	if err := s.accountRepo.SaveRefreshToken(ctx, rt); err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}
