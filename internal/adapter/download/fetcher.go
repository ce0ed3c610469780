package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/metrics"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

// Fetcher downloads source clips over HTTP with a byte cap and probes them
// for duration and audio presence.
type Fetcher struct {
	client   *http.Client
	prober   port.Prober
	maxBytes int64
}

func NewFetcher(prober port.Prober, maxBytes int64, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		prober:   prober,
		maxBytes: maxBytes,
	}
}

// Fetch streams the resource at url to destPath and probes it. The partial
// file is removed on every failure path. Probe failures degrade instead of
// failing: duration falls back to a fixed default, audio presence to false
// (which only suppresses audio mixing, never corrupts it).
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) (*domain.Clip, error) {
	if err := f.download(ctx, url, destPath); err != nil {
		_ = os.Remove(destPath)
		return nil, err
	}

	clip := &domain.Clip{
		SourceURL: url,
		LocalPath: destPath,
		Duration:  domain.DefaultClipDuration,
		HasAudio:  false,
	}

	probe, err := f.prober.Probe(ctx, destPath)
	if err != nil {
		logger.Warn.Printf("probe degraded for %s: %v", logger.SanitizeForLog(url), err)
		return clip, nil
	}
	if d := probe.DurationSeconds(); d > 0 {
		clip.Duration = d
	} else {
		logger.Warn.Printf("probe reported no duration for %s, assuming %gs", logger.SanitizeForLog(url), domain.DefaultClipDuration)
	}
	clip.HasAudio = probe.HasAudio()

	return clip, nil
}

func (f *Fetcher) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.NewError(domain.KindValidation, fmt.Sprintf("invalid clip url %q", url), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return domain.NewError(domain.KindDownload, "download timed out", domain.ErrDownloadTimeout)
		}
		return domain.NewError(domain.KindDownload, "failed to fetch clip", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewError(domain.KindDownload, fmt.Sprintf("clip not found: %s", url), domain.ErrSourceNotFound)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return domain.NewError(domain.KindDownload, fmt.Sprintf("access denied: %s", url), domain.ErrSourceAccessDenied)
	case resp.StatusCode != http.StatusOK:
		return domain.NewError(domain.KindDownload, fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, url), nil)
	}

	// The header check is advisory; the streamed count below is the guard
	// that actually holds when the header lies or is absent.
	if resp.ContentLength > f.maxBytes {
		return domain.NewError(domain.KindDownload, fmt.Sprintf("clip is %d bytes, limit is %d", resp.ContentLength, f.maxBytes), domain.ErrSizeExceeded)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return domain.NewError(domain.KindStorage, "failed to create clip file", err)
	}
	defer file.Close() //nolint:errcheck

	written, err := io.Copy(file, io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return domain.NewError(domain.KindDownload, "download timed out", domain.ErrDownloadTimeout)
		}
		return domain.NewError(domain.KindDownload, "download interrupted", err)
	}
	if written > f.maxBytes {
		return domain.NewError(domain.KindDownload, fmt.Sprintf("clip exceeds %d byte limit", f.maxBytes), domain.ErrSizeExceeded)
	}
	metrics.DownloadBytes.Add(float64(written))

	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ port.ClipFetcher = (*Fetcher)(nil)
