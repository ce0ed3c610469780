package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

// Cleaner enforces the retention windows: terminal job records and
// finalized output files are removed after their respective ages.
type Cleaner struct {
	store           port.JobStore
	outputDir       string
	jobRetention    time.Duration
	outputRetention time.Duration
}

func NewCleaner(store port.JobStore, outputDir string, jobRetention, outputRetention time.Duration) *Cleaner {
	return &Cleaner{
		store:           store,
		outputDir:       outputDir,
		jobRetention:    jobRetention,
		outputRetention: outputRetention,
	}
}

// Run sweeps on the given interval until the context is cancelled. A sweep
// also runs immediately on start.
func (c *Cleaner) Run(ctx context.Context, interval time.Duration) {
	c.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	removed, err := c.store.Sweep(ctx, time.Now().UTC().Add(-c.jobRetention))
	if err != nil {
		logger.Error.Printf("job sweep failed: %v", err)
	} else if removed > 0 {
		logger.Info.Printf("swept %d expired job records", removed)
	}

	files, err := c.sweepOutputs()
	if err != nil {
		logger.Error.Printf("output sweep failed: %v", err)
	} else if files > 0 {
		logger.Info.Printf("swept %d expired output files", files)
	}
}

func (c *Cleaner) sweepOutputs() (int, error) {
	entries, err := os.ReadDir(c.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-c.outputRetention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.outputDir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Error.Printf("failed to remove expired output %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}
