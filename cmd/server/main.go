package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/app"
	"github.com/ignatzorin/cargolink-backend/internal/config"
	"github.com/ignatzorin/cargolink-backend/internal/db"
	"github.com/ignatzorin/cargolink-backend/internal/goroutine"
	httpMiddleware "github.com/ignatzorin/cargolink-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/cargolink-backend/internal/http/router"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/kafka"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/signature"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/service"
	"github.com/ignatzorin/cargolink-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	deps := app.Deps{
		Tokens:   service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL),
		Signer:   signature.NewMockSigner(signature.WithLatency(cfg.EDSSignLatency, cfg.EDSVerifyLatency)),
		Hub:      ws.NewHub(),
		Runner:   goroutine.NewRecoveryHandler(logger.Log),
		Storage:  cfg.StorageDriver,
		DevLogin: cfg.IsDevelopment(),
	}

	// Хранилище: PostgreSQL либо память процесса.
	var repos app.Repositories
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
			log.Fatalf("main: ошибка миграций: %v", err)
		}
		repos = app.PostgresRepositories(dbConn)
		deps.DB = dbConn
	default:
		logger.Log.Warn("main: данные хранятся в памяти и пропадут при перезапуске")
		repos = app.MemoryRepositories(memory.NewStore())
	}

	// События уведомлений в Kafka, если указаны брокеры.
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaNotificationsTopic)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Log.WithError(err).Error("main: ошибка закрытия kafka producer")
			}
		}()
		deps.Publisher = producer
	}

	limiterStore, err := httpMiddleware.NewRateLimitStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения хранилища rate limit: %v", err)
	}

	go deps.Hub.Run(ctx)

	engine := httpRouter.SetupRouter(cfg, app.NewHandlers(repos, deps), deps.Tokens, limiterStore)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала и дожидаемся фоновой доставки уведомлений.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
		if err := deps.Runner.Wait(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("main: фоновые задачи не завершились вовремя")
		}
	}()

	logger.Log.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"env":     cfg.Env,
		"storage": cfg.StorageDriver,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
	<-shutdownDone
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
