package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fragfeed/fragfeed/internal/api"
	"github.com/fragfeed/fragfeed/internal/clip"
	"github.com/fragfeed/fragfeed/internal/config"
	"github.com/fragfeed/fragfeed/internal/detect"
	"github.com/fragfeed/fragfeed/internal/ffmpeg"
	"github.com/fragfeed/fragfeed/internal/logging"
	"github.com/fragfeed/fragfeed/internal/packager"
	"github.com/fragfeed/fragfeed/internal/pipeline"
	"github.com/fragfeed/fragfeed/internal/results"
	"github.com/fragfeed/fragfeed/internal/task"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{cfg.UploadDir(), cfg.WorkDir(), cfg.OutputDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting fragfeed server",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"workers", cfg.Workers(),
	)

	registry := task.NewRegistry()
	runner := ffmpeg.NewRunner(cfg.FFmpegPath(), cfg.FFprobePath(), cfg.FFmpegTimeout(),
		logging.WithComponent(logger, "ffmpeg"))

	detector := detect.New(detect.Config{
		SamplePeriod: cfg.SamplePeriod(),
		Cooldown:     cfg.Cooldown(),
		NewRecognizer: func() (detect.Recognizer, error) {
			return detect.NewTesseract(cfg.OCRLanguage())
		},
		Logger: logging.WithComponent(logger, "detect"),
	})

	pipe := pipeline.New(pipeline.Deps{
		Detector:  detector,
		Extractor: clip.NewExtractor(runner, cfg.ClipDuration(), logging.WithComponent(logger, "extract")),
		Assembler: clip.NewAssembler(runner, logging.WithComponent(logger, "assemble")),
		Packager:  packager.NewPackager(runner, cfg.SegmentLength(), logging.WithComponent(logger, "package")),
		Prober:    runner,
		Registry:  registry,
		Logger:    logging.WithComponent(logger, "pipeline"),
	}, cfg.WorkDir(), cfg.OutputDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := pipeline.NewPool(pipe, cfg.Workers(), cfg.QueueSize())
	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		UploadDir:      cfg.UploadDir(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AuthToken:      cfg.AuthToken(),
		Registry:       registry,
		Pool:           pool,
		Results:        results.NewServer(cfg.OutputDir(), logging.WithComponent(logger, "results")),
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	cancel()
	pool.Stop()

	logger.Info("shutdown complete")
	return nil
}
