package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/framecut/framecut-agent/internal/api"
	"github.com/framecut/framecut-agent/internal/cloud"
	"github.com/framecut/framecut-agent/internal/config"
	"github.com/framecut/framecut-agent/internal/db"
	"github.com/framecut/framecut-agent/internal/logging"
	"github.com/framecut/framecut-agent/internal/media"
	"github.com/framecut/framecut-agent/internal/playback"
	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting framecut agent",
		"version", config.Version,
		"commit", config.GitCommit,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := project.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                  FRAMECUT AGENT v%-25s║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}

	prober, thumbnailer := newMediaTools(logger)

	settings := project.DefaultSettings()
	settings.Layout.StretchMargin = cfg.StretchMargin()
	settings.Layout.SnapRange = cfg.SnapRange()
	settings.Layout.RowHeight = cfg.RowHeight()
	settings.Sampling.Step = cfg.KeyframeStep()
	settings.Sampling.Tension = cfg.KeyframeTension()
	settings.Tick = cfg.PlaybackTick()
	settings.TimelineRange = cfg.TimelineRange()

	manager := project.NewManager(repo, prober, storage, settings, logging.WithComponent(logger, "projects"))

	autosaver := project.NewAutosaver(manager, logging.WithComponent(logger, "autosave"))
	if err := autosaver.Start(cfg.AutosaveSchedule()); err != nil {
		return fmt.Errorf("failed to start autosave: %w", err)
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:         cfg.Port(),
		Manager:      manager,
		Repository:   repo,
		Media:        playback.NewMediaServer(logging.WithComponent(logger, "media")),
		Thumbnailer:  thumbnailer,
		Storage:      storage,
		ThumbnailDir: cfg.ThumbnailDir(),
		Logger:       logger,
		StartTime:    startTime,
		DeviceID:     deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Manager: manager,
			Logger:  logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	autosaver.Stop()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to save open projects", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func newStorage(ctx context.Context, cfg *config.EnvConfig, logger *slog.Logger) (cloud.Storage, error) {
	switch cfg.StorageBackend() {
	case config.StorageS3:
		s, err := cloud.NewS3(ctx, cloud.S3Options{
			Bucket:     cfg.S3Bucket(),
			Region:     cfg.S3Region(),
			Prefix:     cfg.S3Prefix(),
			PresignTTL: cfg.PresignTTL(),
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("s3 storage enabled", "bucket", cfg.S3Bucket(), "region", cfg.S3Region())
		return s, nil
	case config.StorageCDN:
		c, err := cloud.NewCDN(cfg.CDNBaseURL())
		if err != nil {
			return nil, err
		}
		logger.Info("cdn storage enabled", "base_url", cfg.CDNBaseURL())
		return c, nil
	default:
		return cloud.NoStorage{}, nil
	}
}

// newMediaTools uses ffprobe/ffmpeg when they are installed and falls back to
// guessing from file extensions without thumbnails.
func newMediaTools(logger *slog.Logger) (media.Prober, media.Thumbnailer) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		logger.Warn("ffprobe not found, media probing limited to file extensions")
		return media.NewExtensionProber(logger, 0), nil
	}
	ff := media.NewFFmpeg(logger)
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		logger.Warn("ffmpeg not found, thumbnails disabled")
		return ff, nil
	}
	return ff, ff
}

// configStore is the part of the repository that keeps agent identity.
type configStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

func ensureDeviceID(repo configStore) (string, error) {
	return ensureSecret(repo, "device_id", 16)
}

func ensureAuthToken(repo configStore) (string, error) {
	return ensureSecret(repo, "auth_token", 32)
}

func ensureSecret(repo configStore, key string, size int) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	value := hex.EncodeToString(b)

	if err := repo.SetConfig(ctx, key, value); err != nil {
		return "", err
	}

	return value, nil
}
