package port

import (
	"context"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
)

type ClipFetcher interface {
	Fetch(ctx context.Context, url, destPath string) (*domain.Clip, error)
}
