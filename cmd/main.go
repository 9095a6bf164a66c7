package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/postgres/attemptrepository"
	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/redis/bus"
	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/redis/dispatchstore"
	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/redis/sandboxgateway"
	"gitlab.com/fcv-2025.net/attempt-service/internal/config"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/grader"
	logger2 "gitlab.com/fcv-2025.net/attempt-service/internal/global/logger"
	http2 "gitlab.com/fcv-2025.net/attempt-service/internal/http"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging"
	"gitlab.com/fcv-2025.net/attempt-service/internal/schedulerengine"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sysCfg := config.NewSystemConfig()
	logger := logger2.Configure(sysCfg.LogConfig.Level, sysCfg.LogConfig.Format)
	defer func() { _ = logger.Sync() }()
	logger.Info("Starting attempt service", "mode", sysCfg.GradingConfig.Mode)

	ctxBg, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := setupDatabase(ctxBg, sysCfg.PostgresConfig)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := setupRedis(ctxBg, sysCfg.RedisConfig)
	if err != nil {
		logger.Error("Failed to set up redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// SECONDARY PORTS
	attemptRepo := attemptrepository.NewAttemptRepository(db, logger, sysCfg.PostgresConfig.Schema)
	if err := attemptRepo.EnsureSchema(ctxBg); err != nil {
		os.Exit(1)
	}
	messageBus := bus.NewBus(redisClient, logger)
	gateway := sandboxgateway.NewGateway(messageBus, logger)
	dispatches := dispatchstore.NewDispatchStore(redisClient, logger)

	//services
	gradingCfg := sysCfg.GradingConfig
	graderSvc := grader.NewGraderService(gateway, logger, gradingCfg.RunTimeout, gradingCfg.LintTimeout)
	attemptSvc := attempt.NewAttemptService(attemptRepo, dispatches, gateway, graderSvc, logger, attempt.Options{
		Mode:            attempt.Mode(gradingCfg.Mode),
		GradingDeadline: gradingCfg.GradingDeadline,
	})

	//server
	busServer := messaging.NewServer(messageBus, attemptSvc, graderSvc, logger)
	if err := busServer.Start(ctxBg); err != nil {
		logger.Error("Failed to start bus server", "error", err)
		os.Exit(1)
	}

	httpServer := http2.NewServer(sysCfg.HTTPConfig.Port, sysCfg.ServiceName, *http2.NewServiceProvider(attemptSvc), sysCfg.JwtConfig, logger)
	if err := httpServer.Init(); err != nil {
		panic(err)
	}
	httpErr := httpServer.Start(ctxBg)

	sweeper := schedulerengine.NewSchedulerEngine(gradingCfg, attemptSvc, logger)
	if !sysCfg.DebugMode {
		sweeper.StartSweepEngine(ctxBg)
	}

	select {
	case <-quit:
	case err := <-httpErr:
		if err != nil {
			logger.Error("HTTP server stopped", "error", err)
		}
	}
	logger.Info("Shutting down server...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = httpServer.Stop(ctx)
	if err := busServer.Stop(); err != nil {
		logger.Error("Failed to stop bus server", "error", err)
	}
	cancel()
	sweeper.Wait()

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(ctx context.Context, cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// InitReader loads <env>.env when an environment name is given as the first
// argument. Without one the process environment is used as is.
func InitReader() {
	if len(os.Args) < 2 {
		logger2.Warn("Env not supplied in argument, using process environment")
		return
	}
	environment := os.Args[1]

	if err := godotenv.Load(environment + ".env"); err != nil {
		logger2.Error("Error loading env file", "file", environment+".env", "error", err)
		os.Exit(1)
	}
}
