package port

import (
	"context"
	"time"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
)

type JobStore interface {
	Create(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
	Claim(ctx context.Context) (*domain.Job, error)
	SetProgress(ctx context.Context, id string, progress int) error
	Complete(ctx context.Context, id string, result domain.AssemblyResult) error
	Fail(ctx context.Context, id string, kind domain.Kind, message string) error
	ResetStalled(ctx context.Context) error
	Sweep(ctx context.Context, olderThan time.Time) (int64, error)
}
