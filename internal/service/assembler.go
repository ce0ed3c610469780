package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/metrics"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

// Assembler runs the multi-clip crossfade pipeline: fetch sources, compose
// the timeline, invoke the transcoder, finalize the output. One call, one
// isolated working directory.
type Assembler struct {
	fetcher          port.ClipFetcher
	transcoder       port.Transcoder
	finalizer        *Finalizer
	workRoot         string
	transcodeTimeout time.Duration
}

func NewAssembler(fetcher port.ClipFetcher, transcoder port.Transcoder, finalizer *Finalizer, dataDir string, transcodeTimeout time.Duration) *Assembler {
	return &Assembler{
		fetcher:          fetcher,
		transcoder:       transcoder,
		finalizer:        finalizer,
		workRoot:         filepath.Join(dataDir, "work"),
		transcodeTimeout: transcodeTimeout,
	}
}

// Assemble executes the whole pipeline. progress is advisory and may be
// nil. The working directory is removed on every exit path; a terminal
// result never leaves partial downloads or intermediates behind.
func (a *Assembler) Assemble(ctx context.Context, req domain.AssemblyRequest, progress func(int)) (*domain.AssemblyResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	report := func(p int) {
		if progress != nil {
			progress(p)
		}
	}

	workDir := filepath.Join(a.workRoot, uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, domain.NewError(domain.KindStorage, "failed to create working directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Error.Printf("failed to remove working directory %s: %v", workDir, err)
		}
	}()

	report(domain.ProgressDownloadStarted)
	clips := make([]domain.Clip, len(req.ClipURLs))
	for i, url := range req.ClipURLs {
		destPath := filepath.Join(workDir, fmt.Sprintf("clip_%03d", i))
		clip, err := a.fetcher.Fetch(ctx, url, destPath)
		if err != nil {
			return nil, err
		}
		clips[i] = *clip
	}
	report(domain.ProgressDownloadComplete)

	durations := make([]float64, len(clips))
	for i, c := range clips {
		durations[i] = c.Duration
	}
	timeline, err := domain.ComposeTimeline(durations, req.Transition.Duration)
	if err != nil {
		return nil, err
	}

	report(domain.ProgressTranscodeStarted)
	rawPath := filepath.Join(workDir, "output."+req.Output.Format)

	transcodeCtx, cancel := context.WithTimeout(ctx, a.transcodeTimeout)
	defer cancel()

	start := time.Now()
	if err := a.transcoder.Assemble(transcodeCtx, clips, timeline, req.Transition, req.Output, rawPath); err != nil {
		metrics.TranscodesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TranscodesTotal.WithLabelValues("ok").Inc()
	metrics.TranscodeDuration.Observe(time.Since(start).Seconds())
	report(domain.ProgressTranscodeComplete)

	return a.finalizer.Finalize(ctx, rawPath, req.Output.Format, timeline.TotalDuration)
}
