package service

import (
	"context"
	"sync"
	"time"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/metrics"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

type WorkerPool struct {
	store     port.JobStore
	assembler *Assembler
	notifier  *WebhookNotifier
	workers   int

	wg sync.WaitGroup
}

func NewWorkerPool(store port.JobStore, assembler *Assembler, notifier *WebhookNotifier, workers int) *WorkerPool {
	return &WorkerPool{
		store:     store,
		assembler: assembler,
		notifier:  notifier,
		workers:   workers,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	// Fail any jobs left in processing by a previous run; their working
	// directories no longer exist.
	if err := wp.store.ResetStalled(ctx); err != nil {
		logger.Error.Printf("failed to reset stalled jobs: %v", err)
	}

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.runWorker(ctx, i)
	}
	logger.Info.Printf("started %d workers", wp.workers)
}

// Wait blocks until all workers have observed context cancellation and
// finished their in-flight job.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) runWorker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("worker %d shutting down", id)
			return
		default:
		}

		job, err := wp.store.Claim(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error.Printf("worker %d: failed to claim job: %v", id, err)
			time.Sleep(2 * time.Second)
			continue
		}

		if job == nil {
			// No pending jobs, wait before polling again
			time.Sleep(500 * time.Millisecond)
			continue
		}

		logger.Info.Printf("worker %d: processing job %s (%d clips)", id, job.ID, len(job.Request.ClipURLs))
		wp.processJob(ctx, job)
	}
}

func (wp *WorkerPool) processJob(ctx context.Context, job *domain.Job) {
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	progress := func(p int) {
		if err := wp.store.SetProgress(ctx, job.ID, p); err != nil {
			logger.Error.Printf("job %s: failed to record progress %d: %v", job.ID, p, err)
		}
	}

	result, err := wp.assembler.Assemble(ctx, job.Request, progress)
	if err != nil {
		kind := domain.KindOf(err)
		logger.Error.Printf("job %s failed (%s): %v", job.ID, kind, err)
		if storeErr := wp.store.Fail(ctx, job.ID, kind, err.Error()); storeErr != nil {
			logger.Error.Printf("job %s: failed to record failure: %v", job.ID, storeErr)
		}
		metrics.JobsTotal.WithLabelValues(string(domain.JobStatusFailed)).Inc()
		wp.notify(job, domain.JobStatusFailed, nil, kind, err.Error())
		return
	}

	if storeErr := wp.store.Complete(ctx, job.ID, *result); storeErr != nil {
		logger.Error.Printf("job %s: failed to record completion: %v", job.ID, storeErr)
	}
	metrics.JobsTotal.WithLabelValues(string(domain.JobStatusCompleted)).Inc()
	logger.Info.Printf("job %s completed: %s (%.1fs, %d bytes)", job.ID, result.Filename, result.DurationSeconds, result.SizeBytes)
	wp.notify(job, domain.JobStatusCompleted, result, "", "")
}

func (wp *WorkerPool) notify(job *domain.Job, status domain.JobStatus, result *domain.AssemblyResult, kind domain.Kind, message string) {
	if wp.notifier == nil || job.CallbackURL == "" {
		return
	}
	wp.notifier.Notify(job.CallbackURL, Notification{
		JobID:  job.ID,
		Status: status,
		Result: result,
		Error:  notificationError(kind, message),
	})
}
