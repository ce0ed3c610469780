package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexadark/ffmpeg-api-service/config"
	"github.com/alexadark/ffmpeg-api-service/internal/adapter/download"
	HTTPAdapter "github.com/alexadark/ffmpeg-api-service/internal/adapter/http"
	sqlitestore "github.com/alexadark/ffmpeg-api-service/internal/adapter/storage/sqlite"
	"github.com/alexadark/ffmpeg-api-service/internal/adapter/transcoder/ffmpeg"
	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting ffmpeg-api on port %d, data dir %s", cfg.Port, cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error.Printf("failed to create data directory: %v", err)
		os.Exit(1)
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create job store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	outputDir := filepath.Join(cfg.DataDir, "outputs")

	prober := ffmpeg.NewProber(cfg.FFprobePath)
	transcoder := ffmpeg.NewTranscoder(cfg.FFmpegPath)
	fetcher := download.NewFetcher(prober, int64(cfg.MaxClipSizeMB)*1024*1024, cfg.DownloadTimeout)
	finalizer := service.NewFinalizer(outputDir, prober)
	assembler := service.NewAssembler(fetcher, transcoder, finalizer, cfg.DataDir, cfg.TranscodeTimeout)
	notifier := service.NewWebhookNotifier(cfg.WebhookTimeout)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	workerPool := service.NewWorkerPool(store, assembler, notifier, cfg.Workers)
	workerPool.Start(workerCtx)

	// Periodic retention sweep for job records and output files
	cleaner := service.NewCleaner(store, outputDir, cfg.JobRetention, cfg.OutputRetention)
	go cleaner.Run(workerCtx, cfg.SweepInterval)

	handlers := HTTPAdapter.NewHandlers(assembler, store, finalizer)
	server := HTTPAdapter.NewServer(handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: cfg.TranscodeTimeout + cfg.DownloadTimeout, // synchronous requests block for the whole pipeline
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		// Stop workers; anything still processing is failed and reset on next boot
		workerCancel()
		workerPool.Wait()

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}
