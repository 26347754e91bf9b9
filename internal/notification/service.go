// Package notification stores notifications and pushes them over WebSocket
package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/socket"
)

// Notification types
const (
	TypeClaimCreated  = "CLAIM_CREATED"
	TypeClaimApproved = "CLAIM_APPROVED"
	TypeClaimRejected = "CLAIM_REJECTED"
	TypeMemberJoined  = "MEMBER_JOINED"
	TypeEmailVerified = "EMAIL_VERIFIED"
)

// Service handles sending notifications
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// sendWebSocketNotification pushes the stored row to connected devices
func (s *Service) sendWebSocketNotification(notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.AccountID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})
}

func (s *Service) send(ctx context.Context, accountID, notifType, title, message string) error {
	if accountID == "" {
		return nil
	}

	notification := &repository.Notification{
		AccountID: accountID,
		Type:      notifType,
		Title:     title,
		Message:   message,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	s.pushCounts(ctx, accountID)
	return nil
}

// pushCounts refreshes the badge counters on the account's devices
func (s *Service) pushCounts(ctx context.Context, accountID string) {
	if s.broadcaster == nil {
		return
	}
	total, unread, err := s.notificationRepo.CountByAccount(ctx, accountID)
	if err != nil {
		log.Printf("[Notification] ⚠️ Failed to count notifications for %s: %v", accountID, err)
		return
	}
	s.broadcaster.SendNotificationCount(accountID, total, unread)
}

// ============================================
// Claim Notifications
// ============================================

// SendClaimCreated notifies each team manager about a pending roster claim
func (s *Service) SendClaimCreated(ctx context.Context, managerIDs []string, claimantName, entryName string) error {
	var firstErr error
	for _, id := range managerIDs {
		err := s.send(ctx, id, TypeClaimCreated,
			"Roster claim pending",
			fmt.Sprintf("%s claims to be %s", claimantName, entryName))
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendClaimApproved notifies the claimant their claim was approved
func (s *Service) SendClaimApproved(ctx context.Context, accountID, teamName string) error {
	return s.send(ctx, accountID, TypeClaimApproved,
		"Claim approved",
		fmt.Sprintf("You are now a verified member of %s", teamName))
}

// SendClaimRejected notifies the claimant their claim was rejected
func (s *Service) SendClaimRejected(ctx context.Context, accountID, teamName, reason string) error {
	message := fmt.Sprintf("Your claim on the roster of %s was rejected", teamName)
	if reason != "" {
		message += ": " + reason
	}
	return s.send(ctx, accountID, TypeClaimRejected, "Claim rejected", message)
}

// ============================================
// Team Notifications
// ============================================

// SendMemberJoined notifies managers when someone joins by code
func (s *Service) SendMemberJoined(ctx context.Context, managerIDs []string, memberName, teamName string) error {
	var firstErr error
	for _, id := range managerIDs {
		err := s.send(ctx, id, TypeMemberJoined,
			"New team member",
			fmt.Sprintf("%s joined %s", memberName, teamName))
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ============================================
// Account Notifications
// ============================================

// SendEmailVerified confirms a finished email verification
func (s *Service) SendEmailVerified(ctx context.Context, accountID string) error {
	return s.send(ctx, accountID, TypeEmailVerified,
		"Email verified",
		"Your email address is verified")
}

// ============================================
// Queries
// ============================================

func (s *Service) List(ctx context.Context, accountID string, unreadOnly bool) ([]*repository.Notification, error) {
	return s.notificationRepo.FindByAccount(ctx, accountID, unreadOnly)
}

// MarkAsRead reports false when the notification is not the account's own.
func (s *Service) MarkAsRead(ctx context.Context, id, accountID string) (bool, error) {
	ok, err := s.notificationRepo.MarkAsRead(ctx, id, accountID)
	if err != nil || !ok {
		return ok, err
	}
	s.pushCounts(ctx, accountID)
	return true, nil
}
