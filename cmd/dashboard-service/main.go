package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/luciusscala/hackmitmentra/internal/api/handler"
	"github.com/luciusscala/hackmitmentra/internal/api/router"
	"github.com/luciusscala/hackmitmentra/internal/api/storage"
	"github.com/luciusscala/hackmitmentra/internal/config"
	"github.com/luciusscala/hackmitmentra/internal/feed"
	"github.com/luciusscala/hackmitmentra/internal/notify"
	"github.com/luciusscala/hackmitmentra/internal/poller"
	"github.com/luciusscala/hackmitmentra/internal/view"
	"github.com/luciusscala/hackmitmentra/shared/logger"
	"github.com/luciusscala/hackmitmentra/shared/postgresql"
	"github.com/luciusscala/hackmitmentra/shared/rabbitmq"
)

const apiPrefix = "/api/v1"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("DASHBOARD_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/dashboard-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateDashboardConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting dashboard service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("feed", cfg.Feed.BaseURL),
	)

	var dbClient *postgresql.Client
	if cfg.Database.Enabled {
		dbClient, err = initPostgreSQL(&cfg.Database, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbClient.Close()
		appLogger.Info("Database connection established")
	}

	var rabbitClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()
		appLogger.Info("RabbitMQ connection established")
	}

	feedClient := feed.NewClient(&feed.Config{
		BaseURL:        cfg.Feed.BaseURL,
		RequestTimeout: cfg.Feed.RequestTimeout,
		UserAgent:      cfg.Feed.UserAgent,
		Logger:         appLogger.Logger,
	})
	defer feedClient.Close()

	pollers := []*poller.Poller{
		newPoller(handler.ViewDashboard, cfg.Views.Dashboard.Interval, cfg, feedClient, rabbitClient, appLogger.Logger),
		newPoller(handler.ViewLibrary, cfg.Views.Library.Interval, cfg, feedClient, rabbitClient, appLogger.Logger),
	}

	sources := make(map[string]handler.Source, len(pollers))
	for _, p := range pollers {
		sources[p.Name()] = p
	}

	deps := &handler.Dependencies{
		Logger:   appLogger.Logger,
		Sources:  sources,
		Renderer: view.NewRenderer(view.RouteLinks{Prefix: apiPrefix}, cfg.Views.Dashboard.RecentLimit),
		Linker:   feedClient,

		RedirectCacheTTL: cfg.Server.RedirectCacheTTL,
	}
	if dbClient != nil {
		deps.Events = storage.NewStorage(dbClient)
		deps.Database = dbClient
	}

	r := initRouter(cfg.App.Environment, deps)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()

	var wg sync.WaitGroup
	for _, p := range pollers {
		wg.Add(1)
		go func(p *poller.Poller) {
			defer wg.Done()
			if err := p.Run(pollCtx); err != nil {
				appLogger.Error("Poller exited",
					slog.String("view", p.Name()),
					slog.Any("error", err),
				)
			}
		}(p)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	appLogger.Info("Dashboard service is running",
		slog.String("address", addr),
		slog.Duration("dashboard_interval", cfg.Views.Dashboard.Interval),
		slog.Duration("library_interval", cfg.Views.Library.Interval),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		appLogger.Error("Server failed", slog.Any("error", err))
		stopPolling()
		wg.Wait()
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
	}

	// pollers wait for their in-flight fetches before returning
	stopPolling()
	wg.Wait()

	appLogger.Info("Dashboard service shutdown complete")
	return nil
}

func newPoller(name string, interval time.Duration, cfg *config.Config, fetcher poller.Fetcher, rabbitClient *rabbitmq.Client, logger *slog.Logger) *poller.Poller {
	pcfg := &poller.Config{
		Name:           name,
		Interval:       interval,
		RequestTimeout: cfg.Feed.RequestTimeout,
		MaxBackoff:     cfg.Poller.MaxBackoff,
		Logger:         logger,
	}

	// transitions are only published from one view so each change is reported once
	if rabbitClient != nil && name == handler.ViewDashboard {
		pcfg.OnUpdate = notify.New(&notify.Config{
			View:           name,
			Publisher:      rabbitClient,
			Logger:         logger,
			PublishTimeout: cfg.RabbitMQ.Publish.Timeout,
		}).OnUpdate
	}

	return poller.New(fetcher, pcfg)
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   timeFormat,
		MaxSizeMB:    cfg.MaxSizeMB,
		MaxBackups:   cfg.MaxBackups,
		MaxAgeDays:   cfg.MaxAgeDays,
		Compress:     cfg.Compress,
	})
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnectTimeout:  cfg.ConnectTimeout,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes a publish-only RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(environment string, deps *handler.Dependencies) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps)
}
