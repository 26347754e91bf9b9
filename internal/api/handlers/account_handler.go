package handlers

import (
	"errors"
	"net/http"

	"github.com/cancha-app/cancha-backend/internal/api/middleware"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Account Handler
// ============================================

type AccountHandler struct {
	accountService      service.AccountService
	verificationService service.VerificationService
}

// GetCurrentAccount answers /me. The middleware usually resolved the
// account already; a bare account id falls back to a lookup.
func (h *AccountHandler) GetCurrentAccount(c *gin.Context) {
	if account := middleware.GetAccount(c); account != nil {
		c.JSON(http.StatusOK, toAccountResponse(account))
		return
	}

	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) ResendVerification(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}

	lang := email.Lang(c.Query("lang"))

	err := h.verificationService.RequestEmailVerification(c.Request.Context(), accountID, lang)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Account has no email address"})
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}
