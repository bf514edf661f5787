package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/lakshya/placement-portal/internal/app/auth"
	appControllers "github.com/lakshya/placement-portal/internal/app/controllers"
	appMigrations "github.com/lakshya/placement-portal/internal/app/migrations"
	appRepos "github.com/lakshya/placement-portal/internal/app/repositories"
	appRoutes "github.com/lakshya/placement-portal/internal/app/routes"
	appServices "github.com/lakshya/placement-portal/internal/app/services"
	"github.com/lakshya/placement-portal/internal/config"
	"github.com/lakshya/placement-portal/internal/db"
	appMiddleware "github.com/lakshya/placement-portal/internal/middleware"
	pkgAuth "github.com/lakshya/placement-portal/internal/pkg/auth"
	"github.com/lakshya/placement-portal/internal/pkg/events"
	"github.com/lakshya/placement-portal/internal/pkg/filestorage"
	"github.com/lakshya/placement-portal/internal/pkg/helpers"
	"github.com/lakshya/placement-portal/internal/pkg/logger"
	"github.com/lakshya/placement-portal/internal/pkg/metrics"
	"github.com/lakshya/placement-portal/internal/pkg/redis"
	"github.com/lakshya/placement-portal/internal/pkg/validation"
	"github.com/lakshya/placement-portal/internal/seed"
)

// uploadsURLPath is where the router serves the storage directory.
const uploadsURLPath = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.AuthService
	AccountService       appServices.AccountService
	StudentService       appServices.StudentService
	CompanyUpdateService appServices.CompanyUpdateService

	AuthController          *appControllers.AuthController
	AccountController       *appControllers.AccountController
	StudentController       *appControllers.StudentController
	CompanyUpdateController *appControllers.CompanyUpdateController

	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Revocations    pkgAuth.RevocationList
	RateLimiter    appMiddleware.RateLimiter
	Redis          *redis.Client             // nil when redis is disabled
	Publisher      events.Publisher
	Metrics        *metrics.Metrics
	FileStorage    *filestorage.LocalStorage
	DB             *pgxpool.Pool
	Logger         zerolog.Logger
}

// Close releases the optional redis and kafka connections.
func (d *Dependencies) Close() error {
	var err error
	if d.Publisher != nil {
		err = errors.Join(err, d.Publisher.Close())
	}
	if d.Redis != nil {
		err = errors.Join(err, d.Redis.Close())
	}
	return err
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// CONFIG_PATH overrides the default configs/config.yaml.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, applies migrations and seeds default accounts.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		accounts := appRepos.NewAccountRepository(dbPool)
		opts := seed.Options{
			AdminUsername: cfg.Seed.AdminUsername,
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
			DemoUsers:     cfg.Seed.DemoUsers,
		}
		if err := seed.CreateDefaultData(ctx, accounts, accounts, opts, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, DB: dbPool}

	if err := validation.RegisterGinValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.Metrics = metrics.New()

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, uploadsURLPath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey: cfg.JWT.Secret,
		TokenTTL:  helpers.ParseDuration(cfg.JWT.TokenTTL, 24*time.Hour),
		Issuer:    cfg.JWT.Issuer,
	})

	if cfg.Redis.Enabled {
		deps.Redis, err = redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger.Component("redis"))
		if err != nil {
			return nil, err
		}
		deps.Revocations = deps.Redis
		deps.RateLimiter = deps.Redis
	} else {
		lgr.Warn().Msg("Redis disabled: using in-memory revocation list and login throttling")
		deps.Revocations = pkgAuth.NewMemoryRevocationList(deps.JWTService.Now)
		deps.RateLimiter = appMiddleware.NewMemoryRateLimiter(nil)
	}

	if cfg.Kafka.Enabled {
		deps.Publisher = events.NewKafkaPublisher(cfg.KafkaBrokers(), cfg.Kafka.Topic, logger.Component("events"))
		lgr.Info().Strs("brokers", cfg.KafkaBrokers()).Str("topic", cfg.Kafka.Topic).Msg("Kafka event publishing enabled")
	} else {
		deps.Publisher = events.NopPublisher{}
	}

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.AccountRepository)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.AccountRepository,
		deps.Repos.AccountRepository,
		deps.JWTService,
		deps.Revocations,
		deps.FileStorage,
		deps.Publisher,
		deps.Metrics,
		logger.Component("auth"),
	)
	deps.AccountService = appServices.NewAccountService(deps.Repos.AccountRepository, deps.Publisher, logger.Component("accounts"))
	deps.StudentService = appServices.NewStudentService(deps.Repos.AccountRepository, logger.Component("students"))
	deps.CompanyUpdateService = appServices.NewCompanyUpdateService(
		deps.Repos.CompanyUpdateRepository,
		deps.AuthzService,
		deps.Publisher,
		logger.Component("company_updates"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Revocations, deps.Metrics, logger.Component("gate"))

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.Logger)
	deps.AccountController = appControllers.NewAccountController(deps.AccountService, deps.Logger)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.CompanyUpdateController = appControllers.NewCompanyUpdateController(deps.CompanyUpdateService, deps.Logger)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = filestorage.MaxResumeSize + 1<<20
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.Recovery(lgr),
		appMiddleware.Logger(logger.Component("http")),
		appMiddleware.SecurityHeaders(),
		appMiddleware.CORS(cfg.CORSOrigins()),
		appMiddleware.Metrics(deps.Metrics),
	)

	appRoutes.SetupSwagger(router)

	loginLimiter := appMiddleware.RateLimit(
		deps.RateLimiter,
		cfg.RateLimit.LoginLimit,
		helpers.ParseDuration(cfg.RateLimit.LoginWindow, time.Minute),
		lgr,
	)
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AccountController,
		deps.StudentController,
		deps.CompanyUpdateController,
		deps.AuthMiddleware,
		loginLimiter,
	)

	router.Static(uploadsURLPath, cfg.Server.StoragePath)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	router.GET("/health", healthHandler(deps))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

// healthHandler reports database and redis reachability.
func healthHandler(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		healthy := true

		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
			} else {
				checks["database"] = "up"
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "up"
			}
		}

		status, state := http.StatusOK, "ok"
		if !healthy {
			status, state = http.StatusServiceUnavailable, "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
