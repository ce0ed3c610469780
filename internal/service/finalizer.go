package service

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

// Finalizer moves a raw transcoder output into the retrievable outputs
// directory and derives the reported metadata.
type Finalizer struct {
	outputDir string
	prober    port.Prober
}

func NewFinalizer(outputDir string, prober port.Prober) *Finalizer {
	return &Finalizer{outputDir: outputDir, prober: prober}
}

// Finalize persists rawPath under a fresh name. The reported duration is
// the compositor's computed value; a post-hoc probe only backfills it when
// the computation is unusable.
func (f *Finalizer) Finalize(ctx context.Context, rawPath, format string, computedDuration float64) (*domain.AssemblyResult, error) {
	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return nil, domain.NewError(domain.KindStorage, "failed to create output directory", err)
	}

	filename := uuid.NewString() + "." + format
	finalPath := filepath.Join(f.outputDir, filename)
	if err := moveFile(rawPath, finalPath); err != nil {
		return nil, domain.NewError(domain.KindStorage, "failed to persist output", err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, domain.NewError(domain.KindStorage, "failed to stat output", err)
	}

	duration := computedDuration
	if duration <= 0 {
		probe, probeErr := f.prober.Probe(ctx, finalPath)
		if probeErr != nil {
			logger.Warn.Printf("output probe failed for %s: %v", filename, probeErr)
		} else {
			duration = probe.DurationSeconds()
		}
	}

	return &domain.AssemblyResult{
		Filename:        filename,
		DurationSeconds: duration,
		SizeBytes:       info.Size(),
	}, nil
}

// OutputPath resolves a finalized filename, reporting ErrOutputNotFound
// once the retention sweep has removed it.
func (f *Finalizer) OutputPath(filename string) (string, error) {
	path := filepath.Join(f.outputDir, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrOutputNotFound
		}
		return "", err
	}
	return path, nil
}

// moveFile renames, falling back to copy+remove across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
