// Package models holds the HTTP request and response shapes
package models

import "time"

// ============================================
// Requests
// ============================================

type RegisterRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"fullName"`
	Email    *string `json:"email" binding:"omitempty,email"`
	JoinCode string  `json:"joinCode"`
	Lang     string  `json:"lang"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
	SessionID    string `json:"sessionId"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
	Lang  string `json:"lang"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinTeamRequest struct {
	JoinCode string `json:"joinCode" binding:"required"`
}

type AddRosterEntryRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	ShirtNumber *int   `json:"shirtNumber"`
}

type CreateClaimRequest struct {
	RosterEntryID string `json:"rosterEntryId" binding:"required"`
}

type RejectClaimRequest struct {
	Reason string `json:"reason"`
}

// ============================================
// Responses
// ============================================

type AccountResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"fullName"`
	Email         *string   `json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Account      AccountResponse `json:"account"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	SessionID    string          `json:"sessionId,omitempty"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TeamResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"joinCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type MembershipResponse struct {
	ID       string           `json:"id"`
	TeamID   string           `json:"teamId"`
	Role     string           `json:"role"`
	JoinedAt time.Time        `json:"joinedAt"`
	Account  *AccountResponse `json:"account,omitempty"`
}

type RosterEntryResponse struct {
	ID          string  `json:"id"`
	TeamID      string  `json:"teamId"`
	DisplayName string  `json:"displayName"`
	ShirtNumber *int    `json:"shirtNumber,omitempty"`
	AccountID   *string `json:"accountId,omitempty"`
	Verified    bool    `json:"verified"`
}

type ClaimResponse struct {
	ID              string     `json:"id"`
	TeamID          string     `json:"teamId"`
	RosterEntryID   string     `json:"rosterEntryId"`
	AccountID       string     `json:"accountId"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requestedAt"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	ReviewerID      *string    `json:"reviewerId,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
