package handlers

import (
	"errors"
	"net/http"

	"github.com/cancha-app/cancha-backend/internal/api/middleware"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/models"
	"github.com/cancha-app/cancha-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Auth Handler
// ============================================

type AuthHandler struct {
	authService         service.AuthService
	accountService      service.AccountService
	verificationService service.VerificationService
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, access, refresh, err := h.accountService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		JoinCode: req.JoinCode,
		Lang:     email.Lang(req.Lang),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		}
		return
	}

	sessionID := h.establishSession(c, account.ID)

	c.JSON(http.StatusCreated, models.AuthResponse{
		Account:      toAccountResponse(account),
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, access, refresh, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	sessionID := h.establishSession(c, account.ID)

	c.JSON(http.StatusOK, models.AuthResponse{
		Account:      toAccountResponse(account),
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	access, refresh, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, models.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID, _ = c.Cookie(middleware.SessionCookie)
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.verificationService.ConfirmEmail(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{"error": "Verification link expired, request a new one"})
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification link"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		}
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

// ForgotPassword always answers the same way so the endpoint cannot be
// used to probe which emails have accounts.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.verificationService.RequestPasswordReset(c.Request.Context(), req.Email, email.Lang(req.Lang))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If that email exists, a reset link was sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.verificationService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{"error": "Reset link expired, request a new one"})
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reset link"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *AuthHandler) establishSession(c *gin.Context, accountID string) string {
	sessionID, err := h.authService.CreateSession(c.Request.Context(), accountID)
	if err != nil {
		// Token auth still works without a session.
		return ""
	}
	c.SetCookie(middleware.SessionCookie, sessionID, 0, "/", "", false, true)
	return sessionID
}
