package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tradematch_backend/internal/auth"
	"tradematch_backend/internal/config"
	"tradematch_backend/internal/database"
	"tradematch_backend/internal/geo"
	"tradematch_backend/internal/handlers"
	"tradematch_backend/internal/logger"
	"tradematch_backend/internal/middleware"
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/pkg/email"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/routes"
	"tradematch_backend/internal/searchindex"
	"tradematch_backend/internal/services"
	"tradematch_backend/internal/validator"
	"tradematch_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database schema", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	router, worker := SetupRouter(cfg, gormDB)

	if err := worker.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start reindex worker", "error", err)
	}
	defer worker.Stop()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.ReindexWorker) {
	index := newSearchIndex(cfg)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)

	jobRepo := repositories.NewJobRepository(gormDB)
	userRepo := repositories.NewUserRepository(gormDB)

	serviceContainer := initializeServices(cfg, gormDB, index, tokens)
	handlerContainer := initializeHandlers(serviceContainer)

	router := initializeGinRouter(gormDB)
	routes.SetupRoutes(router, handlerContainer, tokens)

	worker := workers.NewReindexWorker(
		jobRepo,
		userRepo,
		index,
		cfg.Search.JobsIndex,
		cfg.Search.TradespeopleIndex,
		cfg.Search.ReindexEveryHours,
	)

	return router, worker
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, index searchindex.Index, tokens *auth.TokenManager) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository(gormDB)
	jobRepo := repositories.NewJobRepository(gormDB)
	quoteRepo := repositories.NewQuoteRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	crmRepo := repositories.NewCRMRepository(gormDB)

	emailSender := newEmailSender(cfg)
	geocoder := newGeocoder(cfg)

	userService := services.NewUserService(userRepo, tokens)
	notificationService := services.NewNotificationService(notificationRepo)
	crmService := services.NewCRMService(crmRepo)
	matchingService := services.NewMatchingService(userRepo)
	jobService := services.NewJobService(
		jobRepo,
		userRepo,
		geocoder,
		matchingService,
		notificationService,
		emailSender,
		crmService,
		index,
		cfg.Search.JobsIndex,
	)
	quoteService := services.NewQuoteService(
		quoteRepo,
		jobRepo,
		userRepo,
		notificationService,
		emailSender,
		crmService,
	)
	searchService := services.NewSearchService(
		jobRepo,
		userRepo,
		index,
		cfg.Search.JobsIndex,
		cfg.Search.TradespeopleIndex,
	)

	return &services.ServiceContainer{
		UserService:         userService,
		JobService:          jobService,
		QuoteService:        quoteService,
		MatchingService:     matchingService,
		SearchService:       searchService,
		NotificationService: notificationService,
		CRMService:          crmService,
		EmailSender:         emailSender,
	}
}

func initializeHandlers(svcs *services.ServiceContainer) *handlers.HandlerContainer {
	return handlers.NewHandlerContainer(svcs, validator.New())
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Warn("Admin credentials not configured, skipping admin seeding")
		return nil
	}

	userRepo := repositories.NewUserRepository(db)
	if _, err := userRepo.FindByEmail(cfg.Admin.Email); err == nil {
		logger.Info("Admin user already exists, skipping creation", "email", cfg.Admin.Email)
		return nil
	} else if err != repositories.ErrUserNotFound {
		return err
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        cfg.Admin.Email,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		Name:         "Admin",
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}
	logger.Info("First admin user created", "email", cfg.Admin.Email)
	return nil
}

func newEmailSender(cfg *config.Config) email.Sender {
	if cfg.Email.SMTPHost == "" || cfg.Email.SMTPUsername == "" {
		logger.Warn("SMTP not configured, outbound email is suppressed")
		return email.NewNoopSender()
	}
	sender, err := email.NewGomailSender(email.Config{
		SMTPHost:  cfg.Email.SMTPHost,
		SMTPPort:  cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
	if err != nil {
		logger.Fatal("Failed to initialize email sender", "error", err)
	}
	return sender
}

func newGeocoder(cfg *config.Config) geo.Geocoder {
	ttl := time.Duration(cfg.Geocoder.CacheTTLDays) * 24 * time.Hour

	var cache geo.Cache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Invalid redis URL", "error", err)
		}
		cache = geo.NewRedisCache(redis.NewClient(opts), ttl)
		logger.Info("Geocoder cache backed by redis")
	} else {
		cache = geo.NewMemoryCache(ttl)
		logger.Info("Geocoder cache in memory")
	}

	return geo.NewCachingGeocoder(geo.NewClient(cfg.Geocoder.BaseURL), cache)
}

func newSearchIndex(cfg *config.Config) searchindex.Index {
	if cfg.Search.BaseURL != "" {
		logger.Info("Search index over HTTP", "url", cfg.Search.BaseURL)
		return searchindex.NewHTTPIndex(cfg.Search.BaseURL)
	}
	logger.Warn("Search index URL not configured, using in-memory index")
	return searchindex.NewMemoryIndex()
}
