package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SundayYogurt/eventhub_service/config"
	"github.com/SundayYogurt/eventhub_service/infra/queue"
	"github.com/SundayYogurt/eventhub_service/internal/api/rest"
	"github.com/SundayYogurt/eventhub_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/eventhub_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/helper/utils"
	"github.com/SundayYogurt/eventhub_service/internal/interfaces"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
	"github.com/SundayYogurt/eventhub_service/internal/services"
	"github.com/SundayYogurt/eventhub_service/pkg/cloudinary"
	"github.com/SundayYogurt/eventhub_service/pkg/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the pieces of infrastructure the HTTP app is built on.
// StartServer dials the real ones; tests pass sqlite and in-memory fakes.
type Deps struct {
	DB       *gorm.DB
	Store    interfaces.FileStore
	Producer interfaces.ProducerHandler
	Auth     helper.Auth
	Log      *zap.Logger
}

// App is the built HTTP app plus the services startup tasks need.
type App struct {
	*fiber.App
	Auth services.AuthService
}

func NewApp(cfg config.Config, deps Deps) *App {
	log := deps.Log

	app := fiber.New(fiber.Config{
		// two identity images plus the text fields
		BodyLimit:    int(2*cfg.MaxUploadBytes) + 1024*1024,
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(log))

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(deps.DB)
	verificationRepo := repository.NewVerificationRepository(deps.DB)
	teamRepo := repository.NewTeamRepository(deps.DB)
	eventRepo := repository.NewEventRepository(deps.DB)
	ticketRepo := repository.NewTicketRepository(deps.DB)
	auditRepo := repository.NewAuditRepository(deps.DB)

	// ---------- Services ----------
	authSvc := services.NewAuthService(userRepo, verificationRepo, deps.Auth, cfg.BcryptCost, log)
	verificationSvc := services.NewVerificationService(
		verificationRepo,
		teamRepo,
		deps.Store,
		deps.Producer,
		log,
		services.VerificationConfig{
			NikPepper:      cfg.NikPepper,
			BcryptCost:     cfg.BcryptCost,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
	)
	accessSvc := services.NewAccessService(teamRepo)
	eventSvc := services.NewEventService(eventRepo, log)
	teamSvc := services.NewTeamService(teamRepo, userRepo, eventRepo, log)
	checkinSvc := services.NewCheckInService(teamRepo, eventRepo, ticketRepo, log)
	adminSvc := services.NewAdminService(userRepo, verificationRepo, eventRepo, auditRepo, log)

	// ---------- Health / metrics ----------
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// ---------- Handlers ----------
	api := app.Group("/api")
	handlers.NewAuthHandler(authSvc, deps.Auth, handlers.CookieConfig{
		Secure:   cfg.SecureCookies,
		UserTTL:  cfg.UserTokenTTL,
		AdminTTL: cfg.AdminTokenTTL,
	}, log).SetupRoutes(api)
	handlers.NewEOApplyHandler(verificationSvc, deps.Auth, cfg.MaxUploadBytes, log).SetupRoutes(api)
	handlers.NewEOHandler(eventSvc, teamSvc, checkinSvc, accessSvc, deps.Auth, log).SetupRoutes(api)
	handlers.NewAdminHandler(verificationSvc, adminSvc, deps.Auth, log).SetupRoutes(api)

	return &App{App: app, Auth: authSvc}
}

// errorHandler renders fiber's own errors (unknown route, oversized body,
// recovered panics) in the same envelope the handlers use. 5xx text stays in the log.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("unhandled error",
				zap.String("request_id", rest.RequestID(ctx)),
				zap.String("method", ctx.Method()),
				zap.String("path", ctx.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
			return utils.ResponseError(ctx, status, "INTERNAL", "internal server error", nil)
		}

		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
		switch status {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusRequestEntityTooLarge:
			code = "VALIDATION_ERROR"
		}
		return utils.ResponseError(ctx, status, code, err.Error(), nil)
	}
}

func newFileStore(cfg config.Config) (interfaces.FileStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	case "cloudinary":
		cld, err := cloudinary.New(cfg.CloudinaryUrl)
		if err != nil {
			return nil, err
		}
		return cloudinary.NewCloudinaryUploader(cld), nil
	default:
		return storage.NewLocalStore(cfg.UploadDir)
	}
}

func StartServer(cfg config.Config, log *zap.Logger) error {
	// ---------- DB ----------
	db, err := repository.Open(cfg.DBDriver, cfg.DatabaseDSN, !cfg.LogDev)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	log.Info("database connected", zap.String("driver", db.Dialector.Name()))

	// ---------- MIGRATION ----------
	if err := repository.Migrate(db); err != nil {
		return err
	}
	log.Info("migration successful")

	// ---------- Infra ----------
	store, err := newFileStore(cfg)
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	log.Info("file store ready", zap.String("driver", cfg.StorageDriver))

	deps := Deps{
		DB:    db,
		Store: store,
		Auth:  helper.SetupAuth(cfg.UserSecret, cfg.AdminSecret, cfg.UserTokenTTL, cfg.AdminTokenTTL),
		Log:   log,
	}
	// a nil *Producer must not become a non-nil interface
	if producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword, log); producer != nil {
		defer producer.Close()
		deps.Producer = producer
		log.Info("kafka producer ready", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
	}

	app := NewApp(cfg, deps)

	// ---------- Seed ----------
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := app.Auth.SeedAdmin(context.Background(), "Administrator", cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	// ---------- Listen ----------
	log.Info("listening", zap.String("addr", cfg.ServerPort))
	return app.Listen(cfg.ServerPort)
}
