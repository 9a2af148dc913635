// Package main is the entry point for the attendance-core API service.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/apricitydigital/attendance-core/internal/config"
	"github.com/apricitydigital/attendance-core/internal/database"
	"github.com/apricitydigital/attendance-core/internal/facematch"
	"github.com/apricitydigital/attendance-core/internal/handler"
	"github.com/apricitydigital/attendance-core/internal/messaging"
	"github.com/apricitydigital/attendance-core/internal/objectstore"
	"github.com/apricitydigital/attendance-core/internal/otel"
	"github.com/apricitydigital/attendance-core/internal/ratelimit"
	"github.com/apricitydigital/attendance-core/internal/report"
	"github.com/apricitydigital/attendance-core/internal/repository"
	"github.com/apricitydigital/attendance-core/internal/router"
	"github.com/apricitydigital/attendance-core/internal/server"
	"github.com/apricitydigital/attendance-core/internal/service"
	"github.com/apricitydigital/attendance-core/internal/token"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := setupLogger(cfg)
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	logger.Info().
		Str("env", cfg.Server.Env).
		Str("port", cfg.Server.Port).
		Msg("starting attendance-core API")

	if cfg.Tracing.Enabled {
		tracerProvider, err := otel.NewTracerProvider(context.Background(), "attendance-core", otel.Config{
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to start otel tracer provider, continuing without tracing")
		} else {
			defer func() {
				if err := tracerProvider.Shutdown(context.Background()); err != nil {
					logger.Warn().Err(err).Msg("error shutting down otel tracer provider")
				}
			}()
		}
	}

	postgres, err := database.NewPostgres(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer postgres.Close()

	redis, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redis.Close()

	if postgres.DB != nil {
		migrationRunner := database.NewMigrationRunner(postgres, logger)
		if err := migrationRunner.RunFromStrings(context.Background(), database.AttendanceMigrations()); err != nil {
			logger.Fatal().Err(err).Msg("failed to run database migrations")
		}
	}

	// Repositories
	roleRepo := repository.NewRoleRepository(postgres.DB)
	userRepo := repository.NewUserRepository(postgres.DB)
	accessRepo := repository.NewAccessRepository(postgres.DB)
	locationRepo := repository.NewLocationRepository(postgres.DB)
	employeeRepo := repository.NewEmployeeRepository(postgres.DB)
	attendanceRepo := repository.NewAttendanceRepository(postgres.DB)
	auditRepo := repository.NewAuditRepository(postgres.DB)

	// Rate limiter, shared between login brute-force protection and the
	// general per-user request limiter (spec.md ambient stack).
	rateLimiter := ratelimit.NewLimiter(redis, logger)

	// Services
	auditService := service.NewAuditService(auditRepo, slogLogger)
	tokenIssuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, auditService, tokenIssuer, cfg.Auth.BcryptCost, slogLogger)
	rbacService := service.NewRBACService(roleRepo, userRepo, redis, slogLogger)
	scopeService := service.NewScopeService(rbacService, accessRepo, locationRepo)

	tz, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("tz", cfg.Attendance.Timezone).Msg("unknown timezone, falling back to UTC")
		tz = time.UTC
	}
	attendanceService := service.NewAttendanceService(attendanceRepo, auditService, tz, cfg.Attendance.RolloverHour)

	// Object store: selected by backend, grounded on the teacher's
	// environment-driven adapter selection convention (spec.md §4.6).
	objectStore := buildObjectStore(cfg, logger)

	// Face-match client: a real HTTP-backed verification service when
	// configured, otherwise a deterministic fake for local/dev use
	// (spec.md §4.4, Non-goals: no on-device face matching).
	faceClient := buildFaceClient(cfg)

	punchService := service.NewPunchService(
		employeeRepo, locationRepo, attendanceRepo,
		faceClient, objectStore, cfg.Attendance.FaceMatchThreshold, slogLogger,
	)

	reportEngine := report.NewEngine(postgres.DB)
	reportService := service.NewReportService(reportEngine, scopeService)

	whatsappClient := messaging.NewWhatsAppClient(cfg.Messaging.WhatsAppGatewayURL, cfg.Messaging.WhatsAppAPIKey)

	// Handlers
	healthHandler := handler.NewHealthHandler(postgres, redis, rateLimiter)
	authHandler := handler.NewAuthHandler(authService, rbacService)
	roleHandler := handler.NewRoleHandler(rbacService)
	userHandler := handler.NewUserHandler(logger, userRepo, authService, rbacService)
	auditHandler := handler.NewAuditHandler(auditService)
	locationHandler := handler.NewLocationHandler(locationRepo)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, punchService, employeeRepo, objectStore, faceClient, slogLogger)
	reportHandler := handler.NewReportHandler(reportService)
	messagingHandler := handler.NewMessagingHandler(reportService, whatsappClient)

	deps := router.Dependencies{
		Config:      cfg,
		Logger:      logger,
		SlogLogger:  slogLogger,
		TokenIssuer: tokenIssuer,
		RBAC:        rbacService,
		Scope:       scopeService,
		RateLimiter: rateLimiter,
		Audit:       auditService,

		HealthHandler:     healthHandler,
		AuthHandler:       authHandler,
		RoleHandler:       roleHandler,
		UserHandler:       userHandler,
		AuditHandler:      auditHandler,
		LocationHandler:   locationHandler,
		AttendanceHandler: attendanceHandler,
		ReportHandler:     reportHandler,
		MessagingHandler:  messagingHandler,
	}

	r := router.New(deps)
	srv := server.New(cfg, r, logger)

	logger.Info().Str("addr", srv.Addr()).Msg("attendance-core ready to accept connections")

	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}

	logger.Info().Msg("attendance-core shutdown complete")
}

// buildObjectStore selects the punch/enrolment image backend from
// configuration: local disk for development, S3 for cloud deployments, or
// an external HTTP asset service authenticated with a pre-shared token.
func buildObjectStore(cfg *config.Config, logger zerolog.Logger) objectstore.Store {
	switch cfg.ObjectStore.Backend {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.ObjectStore.S3Region))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load aws config for object store")
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.ObjectStore.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.ObjectStore.S3Endpoint)
			}
		})
		return objectstore.NewS3Store(client, cfg.ObjectStore.S3Bucket)
	case "external":
		tokens := objectstore.NewStaticTokenSource(cfg.ObjectStore.SecondaryAPIKey)
		return objectstore.NewHTTPStore(cfg.ObjectStore.SecondaryURL, tokens, 15*time.Second)
	default:
		return objectstore.NewLocalStore(cfg.ObjectStore.LocalDir)
	}
}

// buildFaceClient selects the face-verification backend: a configured HTTP
// service, or a deterministic in-memory fake that matches only images it
// has indexed (local/dev use,
// matching the teacher's safety.NewDetector style optional-dependency
// pattern of always providing a working default).
func buildFaceClient(cfg *config.Config) facematch.Client {
	if cfg.FaceMatch.ServiceURL == "" {
		return facematch.NewFakeClient()
	}
	return facematch.NewHTTPClient(cfg.FaceMatch.ServiceURL, cfg.FaceMatch.APIKey, cfg.FaceMatch.Timeout)
}

// setupLogger configures zerolog based on environment.
func setupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if cfg.Logging.Format == "console" || cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return logger
}
