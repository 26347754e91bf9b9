package cron

import (
	"context"
	"log"
	"time"

	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled cleanup tasks. Live verification and reset
// tokens are never touched here; they are checked and consumed at use.
type Scheduler struct {
	cron             *cron.Cron
	accountRepo      repository.AccountRepository
	notificationRepo repository.NotificationRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(accountRepo repository.AccountRepository, notificationRepo repository.NotificationRepository) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		accountRepo:      accountRepo,
		notificationRepo: notificationRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Purge expired refresh tokens every hour
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running refresh token cleanup...")
		s.cleanupExpiredRefreshTokens()
	})

	// Clean up old read notifications every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

func (s *Scheduler) cleanupExpiredRefreshTokens() {
	ctx := context.Background()

	count, err := s.accountRepo.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		log.Printf("[Cron] Error deleting expired refresh tokens: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[Cron] 🧹 Deleted %d expired refresh tokens", count)
	}
}

func (s *Scheduler) cleanupOldNotifications() {
	ctx := context.Background()

	cutoff := time.Now().AddDate(0, 0, -30)
	count, err := s.notificationRepo.DeleteOlderThan(ctx, cutoff, true)
	if err != nil {
		log.Printf("[Cron] Error cleaning notifications: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[Cron] 🧹 Deleted %d old read notifications", count)
	}
}
