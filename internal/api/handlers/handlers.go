package handlers

import (
	"github.com/cancha-app/cancha-backend/internal/models"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	Account      *AccountHandler
	Team         *TeamHandler
	Claim        *ClaimHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth: &AuthHandler{
			authService:         services.Auth,
			accountService:      services.Account,
			verificationService: services.Verification,
		},
		Account: &AccountHandler{
			accountService:      services.Account,
			verificationService: services.Verification,
		},
		Team: &TeamHandler{
			teamService:    services.Team,
			accountService: services.Account,
		},
		Claim: &ClaimHandler{
			claimService: services.Claim,
		},
		Notification: &NotificationHandler{
			notifSvc: services.NotifSvc,
		},
	}
}

// ============================================
// Response Mappers
// ============================================

func toAccountResponse(a *repository.Account) models.AccountResponse {
	return models.AccountResponse{
		ID:            a.ID,
		Username:      a.Username,
		FullName:      a.FullName,
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
		Role:          a.Role,
		CreatedAt:     a.CreatedAt,
	}
}

// toTeamResponse hides the join code unless the caller manages the team
func toTeamResponse(t *repository.Team, includeJoinCode bool) models.TeamResponse {
	resp := models.TeamResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
	if includeJoinCode {
		resp.JoinCode = t.JoinCode
	}
	return resp
}

func toMembershipResponse(m *repository.TeamMembership) models.MembershipResponse {
	resp := models.MembershipResponse{
		ID:       m.ID,
		TeamID:   m.TeamID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
	if m.Account != nil {
		account := toAccountResponse(m.Account)
		resp.Account = &account
	}
	return resp
}

func toRosterEntryResponse(e *repository.RosterEntry) models.RosterEntryResponse {
	return models.RosterEntryResponse{
		ID:          e.ID,
		TeamID:      e.TeamID,
		DisplayName: e.DisplayName,
		ShirtNumber: e.ShirtNumber,
		AccountID:   e.AccountID,
		Verified:    e.Verified,
	}
}

func toClaimResponse(c *repository.MemberClaim) models.ClaimResponse {
	return models.ClaimResponse{
		ID:              c.ID,
		TeamID:          c.TeamID,
		RosterEntryID:   c.RosterEntryID,
		AccountID:       c.AccountID,
		Status:          c.Status,
		RequestedAt:     c.RequestedAt,
		ReviewedAt:      c.ReviewedAt,
		ReviewerID:      c.ReviewerID,
		RejectionReason: c.RejectionReason,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:        n.ID,
		AccountID: n.AccountID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
