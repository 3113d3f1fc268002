package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/config"
	"github.com/noah-isme/evalink-api/internal/database"
	"github.com/noah-isme/evalink-api/internal/handler"
	"github.com/noah-isme/evalink-api/internal/middleware"
	"github.com/noah-isme/evalink-api/internal/repository"
	"github.com/noah-isme/evalink-api/internal/router"
	"github.com/noah-isme/evalink-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("app", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, report cache disabled")
			redisClient = nil
		}
	}

	var natsConn *nats.Conn
	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, activity events will not be published")
			natsConn = nil
		} else {
			publisher = natsConn
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationRepo := repository.NewEvaluationRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	academicRepo := repository.NewAcademicRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	dispatcher := service.NewActivityDispatcher(activityService, publisher, cfg.NATSSubject, cfg.ActivityBuffer, logger)
	dispatcher.Start()

	evaluationService := service.NewEvaluationService(evaluationRepo, dispatcher, redisClient, cfg.CacheTTL, logger)
	questionService := service.NewQuestionService(questionRepo, validate, dispatcher, logger)
	userService := service.NewUserService(
		userRepo,
		validate,
		service.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL),
		service.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		dispatcher,
		logger,
	)
	academicService := service.NewAcademicService(academicRepo, validate, dispatcher, logger)
	incidentService := service.NewIncidentService(incidentRepo, validate, dispatcher, logger)
	seedService := service.NewSeedService(repository.NewCatalogSeeder(db), validate, cfg.SeedEnabled, cfg.SeedToken, dispatcher, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, middleware.RateLimit("evaluations", cfg.SubmitLimit, time.Minute), logger),
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		AcademicHandler:   handler.NewAcademicHandler(academicService, logger),
		IncidentHandler:   handler.NewIncidentHandler(incidentService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		HealthChecks:      healthChecks(db, redisClient),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := dispatcher.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("activity queue not fully drained")
	}
	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			natsConn.Close()
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Warn().Err(err).Msg("failed to close database")
	}

	logger.Info().Msg("server stopped")
}

func healthChecks(db *gorm.DB, redisClient *redis.Client) map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
