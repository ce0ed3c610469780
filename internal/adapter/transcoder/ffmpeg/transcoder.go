package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

// maxStderrBytes caps the diagnostic output kept from one ffmpeg run. The
// process is killed once the cap is exceeded; a graph that chatty has
// already gone wrong.
const maxStderrBytes = 1 << 20

type Transcoder struct {
	ffmpegPath string
}

func NewTranscoder(ffmpegPath string) port.Transcoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Transcoder{ffmpegPath: ffmpegPath}
}

// Assemble runs a single ffmpeg invocation for the whole crossfade chain.
// The context bounds the run; on timeout or non-zero exit no partial output
// is trusted and the error carries the stderr tail.
func (t *Transcoder) Assemble(ctx context.Context, clips []domain.Clip, timeline domain.Timeline, transition domain.TransitionConfig, output domain.OutputConfig, outputPath string) error {
	if err := validatePath(outputPath); err != nil {
		return domain.NewError(domain.KindValidation, "invalid output path", err)
	}
	for i, clip := range clips {
		if err := validatePath(clip.LocalPath); err != nil {
			return domain.NewError(domain.KindValidation, fmt.Sprintf("invalid input path for clip %d", i), err)
		}
	}
	if len(clips) != len(timeline.Entries) {
		return domain.NewError(domain.KindInternal, "timeline does not match clip count", nil)
	}

	audioEnabled := domain.AllHaveAudio(clips)
	graph := AssemblyGraph(clips, timeline, transition, output, audioEnabled)

	args := []string{"-hide_banner", "-nostdin"}
	for _, clip := range clips {
		args = append(args, "-i", clip.LocalPath)
	}
	args = append(args, "-filter_complex", graph.String(), "-map", "[vout]")
	if audioEnabled {
		args = append(args, "-map", "[aout]")
	} else {
		args = append(args, "-an")
	}
	args = append(args, codecArgs(output.Format)...)
	args = append(args, "-y", outputPath)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.ffmpegPath, args...)
	stderr := &cappedBuffer{limit: maxStderrBytes, onExceed: cancel}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		tail := stderr.Tail(2048)
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return domain.NewError(domain.KindTranscode, "transcode timed out", ctx.Err())
		case stderr.Exceeded():
			return domain.NewError(domain.KindTranscode, "transcode produced excessive diagnostic output", err)
		default:
			return domain.NewError(domain.KindTranscode, fmt.Sprintf("ffmpeg failed: %s", tail), err)
		}
	}
	return nil
}

// codecArgs picks encoder settings per container.
func codecArgs(format string) []string {
	switch format {
	case "webm":
		return []string{
			"-c:v", "libaom-av1",
			"-crf", "30",
			"-b:v", "0",
			"-cpu-used", "4",
			"-row-mt", "1",
			"-c:a", "libopus",
			"-b:a", "128k",
		}
	case "mp4", "mov":
		return []string{
			"-c:v", "libx264",
			"-crf", "23",
			"-preset", "medium",
			"-c:a", "aac",
			"-b:a", "128k",
			"-movflags", "+faststart",
		}
	default: // mkv
		return []string{
			"-c:v", "libx264",
			"-crf", "23",
			"-preset", "medium",
			"-c:a", "aac",
			"-b:a", "128k",
		}
	}
}

// cappedBuffer keeps at most limit bytes and signals once the cap is hit
// so the caller can kill the producing process.
type cappedBuffer struct {
	mu       sync.Mutex
	buf      []byte
	limit    int
	exceeded bool
	onExceed func()
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.limit - len(b.buf)
	if room > 0 {
		if len(p) < room {
			room = len(p)
		}
		b.buf = append(b.buf, p[:room]...)
	}
	if len(b.buf) >= b.limit && !b.exceeded {
		b.exceeded = true
		if b.onExceed != nil {
			b.onExceed()
		}
	}
	// Report full consumption so the exec copier never errors; the cancel
	// above is what stops the process.
	return len(p), nil
}

func (b *cappedBuffer) Exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exceeded
}

// Tail returns the last n bytes of captured output.
func (b *cappedBuffer) Tail(n int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.buf) <= n {
		return string(b.buf)
	}
	return string(b.buf[len(b.buf)-n:])
}

var _ port.Transcoder = (*Transcoder)(nil)
