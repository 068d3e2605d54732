package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gatepass/backend/internal/config"
	"github.com/gatepass/backend/internal/handler"
	"github.com/gatepass/backend/internal/middleware"
	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/internal/repository"
	"github.com/gatepass/backend/internal/service"
	"github.com/gatepass/backend/internal/ws"
	"github.com/gatepass/backend/migrations"
	"github.com/gatepass/backend/pkg/auth"
	"github.com/gatepass/backend/pkg/push"
	"github.com/gatepass/backend/pkg/ticket"
)

// @title           Gatepass API
// @version         1.0
// @description     Visitor and gate management for residential complexes: QR invites, gate check-in, manual sign-in approval, and dual-channel notifications.

// @contact.name   API Support
// @contact.email  support@gatepass.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting Gatepass API Server [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.Apartment{},
			&model.Block{},
			&model.Flat{},
			&model.User{},
			&model.Guest{},
			&model.Visit{},
			&model.Notification{},
			&model.PushToken{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Push Gateway (FCM) ====================
	sender, err := push.NewFCM(cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("❌ Failed to initialize FCM: %v", err)
	}

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	ticketCodec := ticket.NewCodec(cfg.Ticket.Secret, cfg.Ticket.TTL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	apartmentRepo := repository.NewApartmentRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	pushTokenRepo := repository.NewPushTokenRepository(db)

	// WebSocket presence registry
	hub := ws.NewHub()

	// Services
	notifier := service.NewNotifier(userRepo, notificationRepo, pushTokenRepo, hub, sender)
	authService := service.NewAuthService(userRepo, apartmentRepo, jwtManager, rdb, notifier, hub)
	visitService := service.NewVisitService(visitRepo, apartmentRepo, userRepo, ticketCodec, notifier, hub)
	adminService := service.NewAdminService(userRepo, apartmentRepo, notifier, hub)
	notificationService := service.NewNotificationService(notificationRepo, pushTokenRepo, userRepo, notifier)

	// Handlers
	handlers := apiHandlers{
		auth:         handler.NewAuthHandler(authService),
		visit:        handler.NewVisitHandler(visitService),
		admin:        handler.NewAdminHandler(adminService),
		public:       handler.NewPublicHandler(adminService),
		notification: handler.NewNotificationHandler(notificationService),
		ws:           handler.NewWSHandler(hub, jwtManager),
	}

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	swaggerURL := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS))

	registerRoutes(router, handlers, jwtManager, rdb)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 Gatepass API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 WebSocket: ws://0.0.0.0:%s/ws", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}
	log.Println("✅ Server exited gracefully")
}

// apiHandlers bundles the HTTP handlers the route table wires up.
type apiHandlers struct {
	auth         *handler.AuthHandler
	visit        *handler.VisitHandler
	admin        *handler.AdminHandler
	public       *handler.PublicHandler
	notification *handler.NotificationHandler
	ws           *handler.WSHandler
}

// registerRoutes installs the full route table on the router.
func registerRoutes(router *gin.Engine, h apiHandlers, jwtManager *auth.JWTManager, rdb *redis.Client) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "gatepass-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Auth (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.auth.Register)
			authGroup.POST("/login", h.auth.Login)
		}

		// Public lookups for registration and the gate-desk kiosk
		api.GET("/apartments", h.public.ListApartments)
		api.GET("/apartments/:id/blocks", h.public.ListBlocks)
		api.GET("/flats", h.public.ListFlats)

		// Manual sign-in: the kiosk at the gate is unauthenticated
		api.POST("/guests/manual", h.visit.ManualSignIn)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
		{
			// Auth
			protected.POST("/auth/logout", h.auth.Logout)
			protected.GET("/auth/profile", h.auth.GetProfile)
			protected.PUT("/auth/profile", h.auth.UpdateProfile)
			protected.POST("/auth/change-password", h.auth.ChangePassword)

			// Resident invite flow
			resident := protected.Group("")
			resident.Use(middleware.RequireRole(model.RoleResident))
			{
				resident.POST("/guests", h.visit.InviteGuest)
				resident.GET("/guests", h.visit.ListGuests)
				resident.PUT("/guests/:id", h.visit.EditInvite)
				resident.DELETE("/guests/:id", h.visit.CancelInvite)
				resident.GET("/guests/manual-pending", h.visit.ManualPending)
				resident.POST("/guests/:visitId/approve-manual", h.visit.ApproveManual)
				resident.POST("/guests/:visitId/reject-manual", h.visit.RejectManual)
			}

			// Gate check-in and the visitor log
			protected.POST("/visits/check-in",
				middleware.RequireRole(model.RoleSecurity), h.visit.CheckIn)
			protected.GET("/visits",
				middleware.RequireRole(model.RoleSecurity, model.RoleAdmin), h.visit.VisitLog)

			// Notifications and push tokens
			protected.GET("/notifications", h.notification.List)
			protected.POST("/notifications/mark-read", h.notification.MarkRead)
			protected.POST("/fcm/register", h.notification.RegisterPushToken)
			protected.POST("/fcm/unregister", h.notification.UnregisterPushToken)
			protected.POST("/fcm/test",
				middleware.RequireRole(model.RoleAdmin), h.notification.TestPush)

			// Admin console
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(model.RoleAdmin))
			{
				admin.GET("/users/pending", h.admin.PendingUsers)
				admin.POST("/users/:id/approve", h.admin.ApproveUser)
				admin.POST("/users/:id/reject", h.admin.RejectUser)

				admin.POST("/apartments", h.admin.CreateApartment)
				admin.PUT("/apartments/:id", h.admin.UpdateApartment)
				admin.DELETE("/apartments/:id", h.admin.DeleteApartment)
				admin.POST("/apartments/:id/blocks", h.admin.CreateBlock)
				admin.GET("/apartments/:id/blocks", h.admin.ListBlocks)
				admin.POST("/apartments/:id/flats", h.admin.CreateFlatInApartment)
				admin.PUT("/blocks/:id", h.admin.UpdateBlock)
				admin.DELETE("/blocks/:id", h.admin.DeleteBlock)
				admin.POST("/blocks/:id/flats", h.admin.CreateFlatInBlock)
				admin.GET("/blocks/:id/flats", h.admin.ListFlatsByBlock)
				admin.PUT("/flats/:id", h.admin.UpdateFlat)
				admin.DELETE("/flats/:id", h.admin.DeleteFlat)

				admin.POST("/guards", h.admin.CreateGuard)
				admin.GET("/guards", h.admin.ListGuards)
				admin.PUT("/guards/:id", h.admin.UpdateGuard)
				admin.DELETE("/guards/:id", h.admin.DeleteGuard)

				admin.GET("/users", h.admin.ListUsers)
				admin.PUT("/users/:id", h.admin.UpdateUser)
				admin.DELETE("/users/:id", h.admin.DeleteUser)
			}
		}
	}

	// WebSocket endpoint; presence is installed on the register event
	router.GET("/ws", h.ws.HandleWebSocket)
}
