// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cancha-app/cancha-backend/internal/api/handlers"
	"github.com/cancha-app/cancha-backend/internal/api/middleware"
	"github.com/cancha-app/cancha-backend/internal/config"
	"github.com/cancha-app/cancha-backend/internal/cron"
	"github.com/cancha-app/cancha-backend/internal/db"
	"github.com/cancha-app/cancha-backend/internal/email"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/cancha-app/cancha-backend/internal/repository"
	"github.com/cancha-app/cancha-backend/internal/service"
	"github.com/cancha-app/cancha-backend/internal/socket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	pg, err := db.NewPostgresDB(cfg.DatabaseURL, int32(cfg.DBMaxConns), int32(cfg.DBMinConns))
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewPgRepositories(pg.Pool)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (session store)
	// ============================================
	var sessions service.SessionStore
	if cfg.RedisURL != "" {
		redisDB, err := db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (using in-memory sessions)", err)
			sessions = db.NewMemorySessionStore()
		} else {
			defer redisDB.Close()
			sessions = redisDB
		}
	} else {
		log.Println("⚠️ Redis not configured, using in-memory sessions")
		sessions = db.NewMemorySessionStore()
	}

	// ============================================
	// Initialize Email Service
	// ============================================
	emailSvc := email.NewService(&email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		UseTLS:   cfg.SMTPUseTLS,
	})
	if cfg.SMTPHost != "" {
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️ Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Sessions:    sessions,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(repos.AccountRepo, repos.NotificationRepo)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestLogger())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/verify-email", h.Auth.VerifyEmail)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/reset-password", h.Auth.ResetPassword)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// Account routes
			accounts := protected.Group("/accounts")
			{
				accounts.GET("/me", h.Account.GetCurrentAccount)
				accounts.POST("/me/resend-verification", h.Account.ResendVerification)
			}

			// Team routes
			teams := protected.Group("/teams")
			{
				teams.POST("", h.Team.CreateTeam)
				teams.POST("/join", h.Team.JoinTeam)
				teams.GET("/:id", h.Team.GetTeam)
				teams.POST("/:id/join-code", h.Team.RegenerateJoinCode)
				teams.GET("/:id/members", h.Team.GetMembers)
				teams.GET("/:id/roster", h.Team.GetRoster)
				teams.POST("/:id/roster", h.Team.AddRosterEntry)
				teams.GET("/:id/claims", h.Claim.ListPending)
			}

			// Claim routes
			claims := protected.Group("/claims")
			{
				claims.POST("", h.Claim.CreateClaim)
				claims.POST("/:id/approve", h.Claim.ApproveClaim)
				claims.POST("/:id/reject", h.Claim.RejectClaim)
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.PATCH("/:id/read", h.Notification.MarkAsRead)
			}
		}
	}

	// ============================================
	// Start server with graceful shutdown
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Forced shutdown: %v", err)
	}

	log.Println("👋 Server stopped")
}
