package handlers

import (
	"errors"
	"net/http"

	"github.com/cancha-app/cancha-backend/internal/api/middleware"
	"github.com/cancha-app/cancha-backend/internal/models"
	"github.com/cancha-app/cancha-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Team Handler
// ============================================

type TeamHandler struct {
	teamService    service.TeamService
	accountService service.AccountService
}

func (h *TeamHandler) CreateTeam(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}

	var req models.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), req.Name, accountID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Team name is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create team"})
		return
	}

	// The creator manages the team and may see the join code.
	c.JSON(http.StatusCreated, toTeamResponse(team, true))
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	teamID := c.Param("id")

	team, err := h.teamService.GetByID(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load team"})
		return
	}

	c.JSON(http.StatusOK, toTeamResponse(team, false))
}

func (h *TeamHandler) JoinTeam(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}

	var req models.JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.accountService.JoinByCode(c.Request.Context(), accountID, req.JoinCode)
	if err != nil {
		if errors.Is(err, service.ErrJoinCodeInvalid) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Join code not recognized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join team"})
		return
	}

	c.JSON(http.StatusOK, toTeamResponse(team, false))
}

func (h *TeamHandler) RegenerateJoinCode(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	team, err := h.teamService.RegenerateJoinCode(c.Request.Context(), teamID, accountID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only team managers can rotate the join code"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate join code"})
		}
		return
	}

	c.JSON(http.StatusOK, toTeamResponse(team, true))
}

func (h *TeamHandler) GetMembers(c *gin.Context) {
	teamID := c.Param("id")

	members, err := h.teamService.Members(c.Request.Context(), teamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load members"})
		return
	}

	response := make([]models.MembershipResponse, len(members))
	for i, m := range members {
		response[i] = toMembershipResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

func (h *TeamHandler) AddRosterEntry(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	var req models.AddRosterEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.teamService.AddRosterEntry(c.Request.Context(), teamID, accountID, req.DisplayName, req.ShirtNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only team managers can edit the roster"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Display name is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add roster entry"})
		}
		return
	}

	c.JSON(http.StatusCreated, toRosterEntryResponse(entry))
}

func (h *TeamHandler) GetRoster(c *gin.Context) {
	teamID := c.Param("id")

	entries, err := h.teamService.Roster(c.Request.Context(), teamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roster"})
		return
	}

	response := make([]models.RosterEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = toRosterEntryResponse(e)
	}
	c.JSON(http.StatusOK, response)
}
