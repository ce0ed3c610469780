package port

import (
	"context"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
)

type Transcoder interface {
	Assemble(ctx context.Context, clips []domain.Clip, timeline domain.Timeline, transition domain.TransitionConfig, output domain.OutputConfig, outputPath string) error
}

type Prober interface {
	Probe(ctx context.Context, inputPath string) (*domain.ProbeResult, error)
}
