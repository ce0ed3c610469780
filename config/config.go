package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	DataDir          string
	MaxClipSizeMB    int
	DownloadTimeout  time.Duration
	TranscodeTimeout time.Duration
	WebhookTimeout   time.Duration
	JobRetention     time.Duration
	OutputRetention  time.Duration
	SweepInterval    time.Duration
	Workers          int
	FFmpegPath       string
	FFprobePath      string
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxClipSizeMB, err := strconv.Atoi(getEnv("MAX_CLIP_SIZE_MB", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CLIP_SIZE_MB: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKERS: %w", err)
	}
	if workers < 1 {
		return nil, fmt.Errorf("WORKERS must be at least 1")
	}

	downloadTimeout, err := getDuration("DOWNLOAD_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}
	transcodeTimeout, err := getDuration("TRANSCODE_TIMEOUT", "15m")
	if err != nil {
		return nil, err
	}
	webhookTimeout, err := getDuration("WEBHOOK_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	jobRetention, err := getDuration("JOB_RETENTION", "1h")
	if err != nil {
		return nil, err
	}
	outputRetention, err := getDuration("OUTPUT_RETENTION", "2h")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getDuration("SWEEP_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:             port,
		DataDir:          getEnv("DATA_DIR", "/data"),
		MaxClipSizeMB:    maxClipSizeMB,
		DownloadTimeout:  downloadTimeout,
		TranscodeTimeout: transcodeTimeout,
		WebhookTimeout:   webhookTimeout,
		JobRetention:     jobRetention,
		OutputRetention:  outputRetention,
		SweepInterval:    sweepInterval,
		Workers:          workers,
		FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:      getEnv("FFPROBE_PATH", "ffprobe"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
