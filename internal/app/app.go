package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cargomarket_backend/database"
	"cargomarket_backend/internal/auth"
	"cargomarket_backend/internal/cache"
	"cargomarket_backend/internal/config"
	"cargomarket_backend/internal/email"
	"cargomarket_backend/internal/handlers"
	"cargomarket_backend/internal/imageprocessor"
	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/middleware"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/newsapi"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/routes"
	"cargomarket_backend/internal/services"
	"cargomarket_backend/internal/storage"
	"cargomarket_backend/internal/validator"
	"cargomarket_backend/internal/workers"
	"cargomarket_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Dependencies - внешние зависимости; пустые поля заполняются по конфигу
type Dependencies struct {
	Storage  storage.Storage
	Cache    cache.Cache
	Email    email.Provider
	News     services.NewsFetcher
	Realtime *ws.WebSocketManager
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	auth.Init(cfg.JWT.Secret, cfg.JWTTTL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	// Отдельный пул sqlx под агрегирующие запросы статистики
	statsDB, err := sqlx.Connect("postgres", cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect stats pool", "error", err)
	}
	defer statsDB.Close()
	logger.Info("Database connected")

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		// Если не удалось создать админа (проблемы с БД и т.д.) - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	appCache := cache.New(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer appCache.Close()

	ginRouter, container := SetupRouter(ctx, cfg, gormDB, statsDB, &Dependencies{Cache: appCache})
	defer container.EmailProvider.Close()

	if cfg.Workers.Enabled {
		workers.NewExpiryWorker(gormDB, container.ListingService, container.OfferService, container.AuthService,
			time.Duration(cfg.Workers.ExpiryInterval)*time.Second).Start(ctx)
		workers.NewNewsSyncWorker(gormDB, container.NewsService,
			time.Duration(cfg.Workers.NewsSyncInterval)*time.Second, nil).Start(ctx)
		logger.Info("Background workers started")
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

// SetupRouter собирает сервисы, хэндлеры и маршруты. WebSocket-менеджер живет до отмены ctx.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB, statsDB *sqlx.DB, deps *Dependencies) (*gin.Engine, *services.ServiceContainer) {
	if deps == nil {
		deps = &Dependencies{}
	}
	deps = withDefaults(cfg, deps)

	wsManager := deps.Realtime
	if wsManager == nil {
		wsManager = ws.NewWebSocketManager()
		go wsManager.Run(ctx)
	}

	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg, statsDB, deps, wsManager)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer)

	// 3. WebSocket
	wsHandler := ws.NewWebSocketHandler(wsManager, cfg.CORS.AllowOrigins)

	// 4. Gin
	ginRouter := initializeGinRouter(cfg, gormDB)

	// 5. Регистрация маршрутов
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, gormDB)

	return ginRouter, serviceContainer
}

func withDefaults(cfg *config.Config, deps *Dependencies) *Dependencies {
	out := *deps

	if out.Storage == nil {
		storageInstance, err := storage.NewStorage(storage.Config{
			Type:       cfg.Storage.Type,
			BasePath:   cfg.Storage.BasePath,
			BaseURL:    cfg.Storage.BaseURL,
			Bucket:     cfg.Storage.Bucket,
			Region:     cfg.Storage.Region,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Endpoint:   cfg.Storage.Endpoint,
			UseSSL:     cfg.Storage.UseSSL,
			PublicRead: cfg.Storage.PublicRead,

			PrivateBuckets: []string{config.BucketVerificationDocuments},
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", "error", err)
		}
		logger.Info("Storage initialized", "type", cfg.Storage.Type)
		out.Storage = storageInstance
	}

	if out.Cache == nil {
		out.Cache = cache.NewMemoryCache()
	}

	if out.Email == nil {
		out.Email = newEmailProvider(cfg)
	}

	if out.News == nil {
		out.News = newsapi.NewClient(newsapi.Config{
			BaseURL:  cfg.NewsAPI.BaseURL,
			APIKey:   cfg.NewsAPI.APIKey,
			Country:  cfg.NewsAPI.Country,
			PageSize: cfg.NewsAPI.PageSize,
			Timeout:  time.Duration(cfg.NewsAPI.Timeout) * time.Second,
		})
	}

	return &out
}

func newEmailProvider(cfg *config.Config) email.Provider {
	smtpCfg := &email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    cfg.Email.UseTLS,
		Timeout:   30 * time.Second,
	}
	if !smtpCfg.IsConfigured() {
		logger.Warn("SMTP is not configured, emails will only be logged")
		return &MockEmailProvider{}
	}

	provider := email.NewSMTPProvider(smtpCfg, email.NewTemplateManager())
	if err := provider.Validate(); err != nil {
		logger.Warn("SMTP provider validation failed, falling back to log-only emails", "error", err)
		return &MockEmailProvider{}
	}
	return provider
}

func initializeServices(cfg *config.Config, statsDB *sqlx.DB, deps *Dependencies, realtime services.RealtimeNotifier) *services.ServiceContainer {
	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()
	listingRepo := repositories.NewListingRepository()
	offerRepo := repositories.NewOfferRepository()
	chatRepo := repositories.NewChatRepository()
	newsRepo := repositories.NewNewsRepository()
	adRepo := repositories.NewAdRepository()
	walletRepo := repositories.NewWalletRepository()
	notificationRepo := repositories.NewNotificationRepository()
	uploadRepo := repositories.NewUploadRepository()
	statsRepo := repositories.NewStatsRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()

	// --- Инициализация сервисов ---
	notificationService := services.NewNotificationService(notificationRepo, realtime)
	uploadService := services.NewUploadService(uploadRepo, deps.Storage, cfg)
	statsService := services.NewStatsService(statsRepo, statsDB, deps.Cache, time.Duration(cfg.Cache.StatsTTL)*time.Second)
	authService := services.NewAuthService(userRepo, profileRepo, walletRepo, refreshTokenRepo,
		time.Duration(cfg.JWT.RefreshTTL)*24*time.Hour)
	profileService := services.NewProfileService(profileRepo, uploadService, imageprocessor.NewProcessor(cfg.Upload.ImageQuality), notificationService, cfg)
	listingService := services.NewListingService(listingRepo, offerRepo, profileRepo, statsService, notificationService)
	offerService := services.NewOfferService(offerRepo, listingRepo, userRepo, profileRepo, notificationService, statsService, deps.Email, realtime, cfg.Server.BaseURL)
	chatService := services.NewChatService(chatRepo, userRepo, listingRepo, uploadService, notificationService, realtime, cfg)
	newsService := services.NewNewsService(newsRepo, deps.News, deps.Cache, time.Duration(cfg.Cache.NewsTTL)*time.Second)
	adService := services.NewAdService(adRepo)
	balanceService := services.NewBalanceService(walletRepo)
	fileService := services.NewFileService(uploadRepo, deps.Storage)
	emailService := services.NewEmailService(deps.Email, deps.Cache, cfg.RateLimit.EmailPerHour, time.Hour)

	return &services.ServiceContainer{
		AuthService:         authService,
		ProfileService:      profileService,
		ListingService:      listingService,
		OfferService:        offerService,
		StatsService:        statsService,
		ChatService:         chatService,
		NewsService:         newsService,
		AdService:           adService,
		BalanceService:      balanceService,
		NotificationService: notificationService,
		UploadService:       uploadService,
		FileService:         fileService,
		EmailService:        emailService,
		EmailProvider:       deps.Email,
		Storage:             deps.Storage,
	}
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	authLimiter := middleware.PerMinute(int(cfg.RateLimit.AuthPerMinute), int(cfg.RateLimit.AuthPerMinute))

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService, authLimiter),
		ProfileHandler:      handlers.NewProfileHandler(baseHandler, services.ProfileService, services.StatsService),
		ListingHandler:      handlers.NewListingHandler(baseHandler, services.ListingService, services.OfferService),
		OfferHandler:        handlers.NewOfferHandler(baseHandler, services.OfferService),
		ChatHandler:         handlers.NewChatHandler(baseHandler, services.ChatService),
		NewsHandler:         handlers.NewNewsHandler(baseHandler, services.NewsService),
		AdHandler:           handlers.NewAdHandler(baseHandler, services.AdService),
		BalanceHandler:      handlers.NewBalanceHandler(baseHandler, services.BalanceService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		EmailHandler:        handlers.NewEmailHandler(baseHandler, services.EmailService),
		FileHandler:         handlers.NewFileHandler(baseHandler, services.FileService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowOrigins))
	router.Use(middleware.RateLimitMiddleware(
		middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
	))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", adminEmail).First(&existing).Error
		if err == nil {
			logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for admin user: %w", err)
		}

		logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		admin := &models.User{
			Email:        adminEmail,
			PasswordHash: hash,
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
		}
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user in database: %w", err)
		}

		profile := &models.Profile{
			UserID:             admin.ID,
			FullName:           "CargoMarket Administration",
			ContactEmail:       adminEmail,
			VerificationStatus: models.VerificationVerified,
		}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create admin profile: %w", err)
		}
		if err := tx.Create(&models.Wallet{UserID: admin.ID, Currency: "USD"}).Error; err != nil {
			return fmt.Errorf("failed to create admin wallet: %w", err)
		}

		logger.Info("✅ Successfully created first admin user", "email", adminEmail)
		return nil
	})
}
