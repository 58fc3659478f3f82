package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vertextoedge/media-download-web/internal/adapter/filesystem"
	"github.com/vertextoedge/media-download-web/internal/adapter/natsbus"
	"github.com/vertextoedge/media-download-web/internal/adapter/sqlite"
	"github.com/vertextoedge/media-download-web/internal/adapter/ytdlp"
	"github.com/vertextoedge/media-download-web/internal/config"
	"github.com/vertextoedge/media-download-web/internal/domain/event"
	"github.com/vertextoedge/media-download-web/internal/logger"
	"github.com/vertextoedge/media-download-web/internal/port"
	"github.com/vertextoedge/media-download-web/internal/registry"
	"github.com/vertextoedge/media-download-web/internal/service/jobs"
	"github.com/vertextoedge/media-download-web/internal/service/maintenance"
	"github.com/vertextoedge/media-download-web/internal/service/server"
	"go.uber.org/zap"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	envFile := flag.String("env-file", ".env", "Path to a dotenv file loaded before configuration")
	flag.Parse()

	// A missing .env is normal; real environment variables still win
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting media-download-web",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Bool("debug", cfg.Debug),
	)

	fsManager, err := filesystem.NewManager(cfg.Downloads.Dir)
	if err != nil {
		zapLogger.Fatal("failed to create download directory", zap.Error(err))
	}

	fetcher := ytdlp.New(ytdlp.Config{
		NoPlaylist:       cfg.Downloads.NoPlaylist,
		ProgressInterval: cfg.Downloads.GetProgressInterval(),
	}, zapLogger)
	if cfg.Downloads.InstallYtdlp {
		installCtx, installCancel := context.WithTimeout(context.Background(), 5*time.Minute)
		err := fetcher.Install(installCtx)
		installCancel()
		if err != nil {
			zapLogger.Fatal("failed to prepare yt-dlp", zap.Error(err))
		}
	}

	dispatcher := event.NewInMemoryDispatcher(false, zapLogger)
	dispatcher.Subscribe(event.NewLoggingHandler(zapLogger))

	var history port.HistoryRepository
	if cfg.History.Path != "" {
		store, err := sqlite.Open(cfg.History.Path)
		if err != nil {
			zapLogger.Fatal("failed to open history database", zap.Error(err), zap.String("path", cfg.History.Path))
		}
		defer store.Close()
		history = store
		dispatcher.Subscribe(jobs.NewHistoryHandler(store))
	}

	if cfg.Events.NatsURL != "" {
		bus, err := natsbus.Connect(cfg.Events.NatsURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer bus.Close()
		dispatcher.Subscribe(natsbus.NewPublishHandler(bus, cfg.Events.SubjectPrefix))
		zapLogger.Info("publishing job events", zap.String("subject_prefix", cfg.Events.SubjectPrefix))
	}

	jobRegistry := registry.New(fsManager, zapLogger)
	jobManager := jobs.NewManager(jobRegistry, fetcher, fsManager, dispatcher, cfg.Downloads.MaxJobs, zapLogger)
	jobManager.SetSpaceGuard(jobs.NewSpaceGuard(fsManager, cfg.Downloads.MaxDiskUsagePercent))

	maintenanceService := maintenance.New(&maintenance.Config{
		Interval:       cfg.Maintenance.GetInterval(),
		TempFileMaxAge: cfg.Maintenance.GetTempFileMaxAge(),
		OrphanMaxAge:   cfg.Maintenance.GetOrphanMaxAge(),
	}, fsManager, jobRegistry, zapLogger)

	httpServer := server.New(&server.Config{
		BindAddr:     cfg.BindAddr(),
		ReadTimeout:  cfg.HTTP.GetReadTimeout(),
		WriteTimeout: cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:  cfg.HTTP.GetIdleTimeout(),
		RateLimit:    cfg.HTTP.RateLimit,
		RateBurst:    cfg.HTTP.RateBurst,
	}, jobManager, history, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := httpServer.Start(); err != nil {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := maintenanceService.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("maintenance service stopped with error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	zapLogger.Info("application started successfully",
		zap.String("http_addr", cfg.BindAddr()),
		zap.String("download_dir", fsManager.RootDir()),
		zap.Int("max_jobs", cfg.Downloads.MaxJobs),
	)
	<-sigChan

	zapLogger.Info("shutdown signal received, stopping services...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	maintenanceService.Stop()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		zapLogger.Error("failed to stop HTTP server gracefully", zap.Error(err))
	}

	if err := jobManager.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("running downloads were cancelled", zap.Error(err))
	}

	zapLogger.Info("application stopped successfully")
}
