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
// Member Claim Handler
// ============================================

type ClaimHandler struct {
	claimService service.ClaimService
}

func (h *ClaimHandler) CreateClaim(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}

	var req models.CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.claimService.Create(c.Request.Context(), accountID, req.RosterEntryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Roster entry not found"})
		case errors.Is(err, service.ErrAlreadyClaimed):
			c.JSON(http.StatusConflict, gin.H{"error": "Entry already claimed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create claim"})
		}
		return
	}

	c.JSON(http.StatusCreated, toClaimResponse(claim))
}

func (h *ClaimHandler) ListPending(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	claims, err := h.claimService.ListPendingByTeam(c.Request.Context(), teamID, accountID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only team managers can review claims"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load claims"})
		return
	}

	response := make([]models.ClaimResponse, len(claims))
	for i, claim := range claims {
		response[i] = toClaimResponse(claim)
	}
	c.JSON(http.StatusOK, response)
}

func (h *ClaimHandler) ApproveClaim(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}
	claimID := c.Param("id")
	lang := email.Lang(c.Query("lang"))

	claim, err := h.claimService.Approve(c.Request.Context(), claimID, accountID, lang)
	if err != nil {
		h.writeDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, toClaimResponse(claim))
}

func (h *ClaimHandler) RejectClaim(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}
	claimID := c.Param("id")
	lang := email.Lang(c.Query("lang"))

	var req models.RejectClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.claimService.Reject(c.Request.Context(), claimID, accountID, req.Reason, lang)
	if err != nil {
		h.writeDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, toClaimResponse(claim))
}

func (h *ClaimHandler) writeDecisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team managers can review claims"})
	case errors.Is(err, service.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "Claim already reviewed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review claim"})
	}
}
