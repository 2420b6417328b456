package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equipbook/internal/api"
	"equipbook/internal/cms"
	"equipbook/internal/config"
	"equipbook/internal/database"
	"equipbook/internal/domain"
	"equipbook/internal/events"
	"equipbook/internal/google"
	"equipbook/internal/lock"
	"equipbook/internal/logging"
	"equipbook/internal/metrics"
	"equipbook/internal/notify"
	"equipbook/internal/service"
	"equipbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	repo, closeRepo, err := initStore(cfg, &logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	locker := initLocker(cfg, redisClient, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus()

	var syncWorker domain.SyncWorker
	if sheetsWorker := initSheetsWorker(ctx, cfg, repo, &logger); sheetsWorker != nil {
		syncWorker = sheetsWorker
		go sheetsWorker.Start(ctx)
	}

	bookings := service.NewBookingService(repo, locker, cfg.Booking.LockTTL, bus, syncWorker, &logger)
	directory := service.NewDirectoryService(repo, &logger)

	if notifier := initNotifier(cfg, directory, &logger); notifier != nil {
		notifier.Subscribe(bus)
		go notifier.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, api.NewServer(cfg, bookings, directory, &logger), &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, *logging.Component(baseLogger, "api-main"), closer, nil
}

// initStore opens the configured content store backend.
func initStore(cfg *config.Config, logger *zerolog.Logger) (domain.Repository, func(), error) {
	switch cfg.Store.Driver {
	case "sqlite":
		db, err := database.NewDB(cfg.Store.SQLite.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Store.SQLite.Path).Msg("init database")
			return nil, nil, err
		}
		logger.Info().Str("db_path", cfg.Store.SQLite.Path).Msg("using sqlite store")
		return db, func() { _ = db.Close() }, nil
	default:
		client, err := cms.NewClient(cfg.Store.CMS)
		if err != nil {
			return nil, nil, fmt.Errorf("init cms client: %w", err)
		}
		logger.Info().Str("dataset", cfg.Store.CMS.Dataset).Msg("using cms store")
		return cms.NewRepository(client, logger), func() {}, nil
	}
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := lock.NewRedisClient(cfg.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := lock.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, booking locks stay in-process")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initLocker returns nil when write serialisation is switched off.
func initLocker(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.Locker {
	if !cfg.Booking.Serialized() {
		logger.Warn().Msg("booking writes are not serialised; concurrent overlapping creates are possible")
		return nil
	}
	memory := lock.NewMemoryLocker()
	if redisClient == nil {
		return memory
	}
	return lock.NewFailoverLocker(lock.NewRedisLocker(redisClient), memory, logger)
}

func initSheetsWorker(ctx context.Context, cfg *config.Config, source worker.ReportSource, logger *zerolog.Logger) *worker.SheetsWorker {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.UsageSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.GoogleCredentialsFile, cfg.Google.UsageSpreadSheetID, cfg.Google.UsageSheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sheetsService.TestConnection(testCtx); err != nil {
		email, _ := google.ServiceAccountEmail(cfg.Google.GoogleCredentialsFile)
		logger.Warn().Err(err).Str("service_account", email).Msg("usage sheet not reachable; share the spreadsheet with the service account")
	}

	w := worker.NewSheetsWorker(source, sheetsService, worker.RetryPolicy{}, worker.SyncWindow{
		MonthsBefore: cfg.Sync.MonthsBefore,
		MonthsAfter:  cfg.Sync.MonthsAfter,
	}, logger)
	if err := w.Schedule(cfg.Sync.Schedule); err != nil {
		logger.Warn().Err(err).Msg("periodic usage sync disabled")
	}
	w.Trigger("startup", "")

	logger.Info().Str("schedule", cfg.Sync.Schedule).Msg("google sheets connected")
	return w
}

func initNotifier(cfg *config.Config, directory notify.Directory, logger *zerolog.Logger) *notify.TelegramNotifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}

	bot, err := notify.NewBot(cfg.Telegram)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return nil
	}

	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
	return notify.NewTelegramNotifier(bot, cfg.Telegram.ChatID, directory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.Server, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
