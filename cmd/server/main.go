// Package main - точка входа REST API сервера EdWeb Learning Hub.
//
// Сервер обслуживает конвейер отправки квизов и читающие поверхности:
// - POST /api/v1/modules/{id}/quiz/submit - отправка квиза
// - GET  /api/v1/courses/my               - курсы ученика с прогрессом
// - GET  /api/v1/courses/my-learners      - отчёт инструктора
// - GET  /api/v1/notifications            - лента уведомлений
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edweb-hub/edweb-learning-hub/config"
	"github.com/edweb-hub/edweb-learning-hub/internal/application/command"
	"github.com/edweb-hub/edweb-learning-hub/internal/application/eventhandler"
	"github.com/edweb-hub/edweb-learning-hub/internal/application/query"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/internal/infrastructure/messaging"
	"github.com/edweb-hub/edweb-learning-hub/internal/infrastructure/persistence/postgres"
	"github.com/edweb-hub/edweb-learning-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/edweb-hub/edweb-learning-hub/internal/interface/http"
	"github.com/edweb-hub/edweb-learning-hub/internal/interface/http/handlers"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting EdWeb Learning Hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var progressCache query.ProgressCache
	var reportCache query.ReportCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureCacheProgress, nil) {
				progressCache = redis.NewProgressCache(redisCache)
			}
			if cfg.Features.IsEnabled(config.FeatureCacheReport, nil) {
				reportCache = redis.NewReportCache(redisCache)
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	learnerRepo := postgres.NewLearnerRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	enrollmentRepo := postgres.NewEnrollmentRepository(dbConn)
	resultRepo := postgres.NewQuizResultRepository(dbConn)
	achievementRepo := postgres.NewAchievementRepository(dbConn)
	cohortRepo := postgres.NewCohortRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// Инвалидация кеша прогресса на каждую записанную попытку.
	if progressCache != nil {
		invalidator := eventhandler.NewProgressCacheInvalidator(progressCache, log)
		if err := eventBus.Subscribe(shared.EventSubmissionRecorded, invalidator); err != nil {
			return fmt.Errorf("failed to subscribe cache invalidator: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ ОБРАБОТЧИКОВ (CQRS)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing command and query handlers...")

	submitHandler := command.NewSubmitQuizHandler(
		courseRepo, resultRepo, achievementRepo, cohortRepo, notificationRepo,
		eventBus,
		command.SubmitQuizHandlerConfig{
			ReassignCohorts: cfg.Features.ReassignCohorts(),
			Logger:          log,
		},
	)
	registerHandler := command.NewRegisterLearnerHandler(learnerRepo, eventBus, log)
	enrollHandler := command.NewEnrollLearnerHandler(courseRepo, enrollmentRepo, eventBus, log)
	markReadHandler := command.NewMarkNotificationReadHandler(notificationRepo, log)

	myCoursesHandler := query.NewGetMyCoursesHandler(courseRepo, enrollmentRepo, resultRepo, progressCache, log)
	reportHandler := query.NewGetLearnerReportHandler(courseRepo, enrollmentRepo, learnerRepo, resultRepo, reportCache, log)
	notificationsHandler := query.NewGetNotificationsHandler(notificationRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("postgres", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("redis", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	serverConfig := httpapi.DefaultConfig()
	serverConfig.Host = cfg.HTTP.Host
	serverConfig.Port = cfg.HTTP.Port
	serverConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	serverConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	serverConfig.EnableCORS = cfg.HTTP.EnableCORS
	serverConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpapi.NewServer(serverConfig, httpapi.Dependencies{
		SubmitQuizHandler:           submitHandler,
		RegisterLearnerHandler:      registerHandler,
		EnrollLearnerHandler:        enrollHandler,
		MarkNotificationReadHandler: markReadHandler,
		GetMyCoursesHandler:         myCoursesHandler,
		GetLearnerReportHandler:     reportHandler,
		GetNotificationsHandler:     notificationsHandler,
		Logger:                      log,
		HealthChecker:               healthChecker,
	})

	errCh := server.StartAsync()
	log.Info("EdWeb Learning Hub API is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", logger.Err(err))
	}

	log.Info("shutdown completed successfully")
	return nil
}
