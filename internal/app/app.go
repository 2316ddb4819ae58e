package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenjobs_backend/internal/auth"
	"greenjobs_backend/internal/cache"
	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/email"
	"greenjobs_backend/internal/handlers"
	"greenjobs_backend/internal/imageprocessor"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/middleware"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/render"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/routes"
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/storage"
	"greenjobs_backend/internal/validator"
	"greenjobs_backend/internal/workers"
	"greenjobs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// uploadCleanupGrace - файлы моложе суток не трогаем, заявка может еще сохраняться
const uploadCleanupGrace = 24 * time.Hour

// Dependencies - внешние ресурсы, которые создаются до роутера (в тестах подменяются)
type Dependencies struct {
	Storage storage.Storage
	Mail    email.Provider
	Redis   *redis.Client // nil - статистика без кэша
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := OpenDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(models.AllModels()...); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	deps, err := buildDependencies(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", "error", err)
	}
	if deps.Redis != nil {
		defer deps.Redis.Close()
	}

	ginRouter, serviceContainer, err := SetupRouter(cfg, gormDB, deps)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}

	if err := Bootstrap(ctx, cfg, gormDB, serviceContainer); err != nil {
		// без отраслей и администратора сервис бесполезен
		logger.Fatal("Failed to seed initial data", "error", err)
	}

	if cfg.Upload.CleanupInterval > 0 {
		workers.NewUploadCleanupWorker(
			gormDB,
			repositories.NewUploadRepository(),
			serviceContainer.UploadService,
			time.Duration(cfg.Upload.CleanupInterval)*time.Minute,
			uploadCleanupGrace,
		).Start(ctx)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// OpenDatabase открывает postgres или sqlite по config.Database.Driver
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		dialector = postgres.Open(cfg.Database.DSN)
	}

	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(200*time.Millisecond, level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return gormDB, nil
}

func buildDependencies(ctx context.Context, cfg *config.Config) (Dependencies, error) {
	var deps Dependencies

	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		AccountID:  cfg.Storage.AccountID,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return deps, fmt.Errorf("failed to initialize storage: %w", err)
	}
	deps.Storage = storageInstance
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP host is not set, emails will only be logged")
		deps.Mail = email.NewLogProvider()
	} else {
		smtpConfig := email.DefaultConfig()
		smtpConfig.Host = cfg.Email.SMTPHost
		smtpConfig.Port = cfg.Email.SMTPPort
		smtpConfig.Username = cfg.Email.SMTPUsername
		smtpConfig.Password = cfg.Email.SMTPPassword
		smtpConfig.FromEmail = cfg.Email.FromEmail
		smtpConfig.FromName = cfg.Email.FromName
		smtpConfig.UseTLS = cfg.Email.UseTLS

		provider, err := email.NewSMTPProvider(smtpConfig)
		if err != nil {
			return deps, fmt.Errorf("failed to initialize smtp provider: %w", err)
		}
		deps.Mail = provider
	}

	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			// кэш статистики необязателен
			logger.Warn("Redis unavailable, statistics cache disabled", "error", err)
		} else {
			deps.Redis = client
			logger.Info("Redis connected")
		}
	}
	return deps, nil
}

// SetupRouter собирает сервисы, хэндлеры и gin.Engine
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, deps Dependencies) (*gin.Engine, *services.ServiceContainer, error) {
	tokens := auth.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.TTL)*time.Minute,
		time.Duration(cfg.JWT.ActionTokenTTL)*time.Minute,
	)
	customValidator := validator.New()

	// 1. Инициализируем сервисы
	serviceContainer, err := initializeServices(cfg, deps, tokens, customValidator)
	if err != nil {
		return nil, nil, err
	}

	// 2. Инициализируем хэндлеры
	appHandlers, err := initializeHandlers(cfg, serviceContainer, tokens, customValidator, gormDB)
	if err != nil {
		return nil, nil, err
	}

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB)

	// 4. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, serviceContainer, nil
}

func initializeServices(
	cfg *config.Config,
	deps Dependencies,
	tokens *auth.TokenManager,
	v *validator.Validator,
) (*services.ServiceContainer, error) {
	templates, err := email.NewTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	if err := templates.LoadTemplates(cfg.Email.TemplatesDir); err != nil {
		return nil, fmt.Errorf("failed to load email template overrides: %w", err)
	}

	links := services.NewLinks(cfg.Site.URL)

	// --- Инициализация репозиториев ---
	applicantRepo := repositories.NewApplicantRepository()
	industryRepo := repositories.NewIndustryRepository()
	uploadRepo := repositories.NewUploadRepository()
	userRepo := repositories.NewUserRepository()
	statsRepo := repositories.NewStatisticsRepository()

	// --- Инициализация сервисов ---
	statisticsService := services.NewStatisticsService(statsRepo, cache.NewStatsCache(deps.Redis, cfg.StatsTTL()))
	notificationService := services.NewNotificationService(deps.Mail, templates, v, cfg.Site, cfg.Notifications, links)
	uploadService := services.NewUploadService(uploadRepo, deps.Storage, imageprocessor.NewProcessor(cfg.Upload.ImageQuality), services.UploadRules{
		ResumeMaxSize: cfg.Upload.ResumeMaxSize,
		PhotoMaxSize:  cfg.Upload.PhotoMaxSize,
		ThumbnailSize: cfg.Upload.ThumbnailSize,
	})

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, tokens),
		ApplicantService:    services.NewApplicantService(applicantRepo, industryRepo, v, links),
		LifecycleService:    services.NewLifecycleService(applicantRepo, notificationService, statisticsService, links),
		IntakeService:       services.NewIntakeService(applicantRepo, industryRepo, uploadService, notificationService, statisticsService, tokens, v, cfg.FormFields()),
		NotificationService: notificationService,
		DirectoryService:    services.NewDirectoryService(applicantRepo, industryRepo, cfg.Directory.PerPage, cfg.Directory.FeaturedCount, links),
		StatisticsService:   statisticsService,
		UploadService:       uploadService,
		EmailProvider:       deps.Mail,
		Storage:             deps.Storage,
	}, nil
}

func initializeHandlers(
	cfg *config.Config,
	svc *services.ServiceContainer,
	tokens *auth.TokenManager,
	v *validator.Validator,
	gormDB *gorm.DB,
) (*handlers.AppHandlers, error) {
	baseHandler := handlers.NewBaseHandler(v)

	renderer, err := render.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load embed views: %w", err)
	}

	fields := cfg.FormFields()
	// оба файла плюс текстовые поля формы
	maxBody := cfg.Upload.ResumeMaxSize + cfg.Upload.PhotoMaxSize + 1<<20

	return &handlers.AppHandlers{
		AuthHandler:        handlers.NewAuthHandler(baseHandler, svc.AuthService, tokens),
		AdminHandler:       handlers.NewAdminHandler(baseHandler, svc.ApplicantService, svc.LifecycleService, svc.AuthService, svc.UploadService, tokens),
		FormHandler:        handlers.NewFormHandler(baseHandler, svc.AuthService, svc.DirectoryService, fields),
		ApplicationHandler: handlers.NewApplicationHandler(baseHandler, svc.IntakeService, maxBody),
		DirectoryHandler:   handlers.NewDirectoryHandler(baseHandler, svc.DirectoryService, svc.StatisticsService),
		EmbedHandler:       handlers.NewEmbedHandler(baseHandler, renderer, svc.AuthService, svc.DirectoryService, svc.StatisticsService, fields, cfg.Site),
		FileHandler:        handlers.NewFileHandler(baseHandler, svc.Storage),
		HealthHandler:      handlers.NewHealthHandler(gormDB),
	}, nil
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

// Bootstrap создает отрасли из конфигурации и первого администратора
func Bootstrap(ctx context.Context, cfg *config.Config, gormDB *gorm.DB, svc *services.ServiceContainer) error {
	db := gormDB.WithContext(ctx)

	if err := services.SeedIndustries(ctx, db, repositories.NewIndustryRepository(), cfg.Industries); err != nil {
		return err
	}

	if err := svc.AuthService.SeedFirstAdmin(ctx, db, cfg.FirstAdmin.Email, cfg.FirstAdmin.Password, cfg.FirstAdmin.Name); err != nil {
		return fmt.Errorf("failed to seed first admin user: %w", err)
	}
	return nil
}
