package app

import (
	"fmt"
	"log"
	"time"

	"stagegate/internal/config"
	"stagegate/internal/db"
	"stagegate/internal/handlers"
	"stagegate/internal/middleware"
	"stagegate/internal/pdf"
	"stagegate/internal/repositories"
	"stagegate/internal/routes"
	"stagegate/internal/services"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "stagegate/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetSigningKey(cfg.Auth.JWTSecret)

	// === DB (runs embedded migrations) ===
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("database close failed: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(conn)
	projectRepo := repositories.NewProjectRepository(conn)
	reviewRepo := repositories.NewReviewRepository(conn)
	memberRepo := repositories.NewMemberRepository(conn)
	redFlagRepo := repositories.NewRedFlagRepository(conn)
	notificationRepo := repositories.NewNotificationRepository(conn)
	activityRepo := repositories.NewActivityRepository(conn)
	resetRepo := repositories.NewPasswordResetRepository(conn)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	var telegramService *services.TelegramService
	if cfg.Telegram.Enabled {
		telegramService = services.NewTelegramService(cfg.Telegram.BotToken)
	} else {
		telegramService = services.NewTelegramService("")
	}

	notifier := services.NewNotificationService(notificationRepo, activityRepo, userRepo, emailService, telegramService)
	userService := services.NewUserService(userRepo, emailService, authService)
	resetPolicy := services.DefaultResetPolicy()
	if cfg.Auth.ResetTokenTTLMinutes > 0 {
		resetPolicy.TokenTTL = time.Duration(cfg.Auth.ResetTokenTTLMinutes) * time.Minute
	}
	if cfg.Auth.MinPasswordLength > 0 {
		resetPolicy.MinPasswordLength = cfg.Auth.MinPasswordLength
	}
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService, resetPolicy)
	projectService := services.NewProjectService(projectRepo, memberRepo)
	reviewService := services.NewReviewService(conn, reviewRepo, projectRepo)
	redFlagService := services.NewRedFlagService(redFlagRepo, projectRepo, notifier)

	pdfGen := pdf.NewReportGenerator(cfg.Files.RootDir, "")
	reportService := services.NewReportService(projectRepo, redFlagRepo, pdfGen)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, resetService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService, notifier, activityRepo)
	reviewHandler := handlers.NewReviewHandler(reviewService, notifier)
	redFlagHandler := handlers.NewRedFlagHandler(redFlagService, projectService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	reportHandler := handlers.NewReportHandler(reportService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		projectHandler,
		reviewHandler,
		redFlagHandler,
		notificationHandler,
		reportHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
