package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
)

// fakeFetcher writes a tiny file per clip and returns a canned Clip.
type fakeFetcher struct {
	durations []float64
	hasAudio  bool
	err       error
	calls     int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, destPath string) (*domain.Clip, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := os.WriteFile(destPath, []byte("clip"), 0644); err != nil {
		return nil, err
	}
	duration := domain.DefaultClipDuration
	if f.calls < len(f.durations) {
		duration = f.durations[f.calls]
	}
	f.calls++
	return &domain.Clip{
		SourceURL: url,
		LocalPath: destPath,
		Duration:  duration,
		HasAudio:  f.hasAudio,
	}, nil
}

// fakeTranscoder writes the output file instead of running ffmpeg.
type fakeTranscoder struct {
	err      error
	timeline domain.Timeline
}

func (f *fakeTranscoder) Assemble(ctx context.Context, clips []domain.Clip, timeline domain.Timeline, transition domain.TransitionConfig, output domain.OutputConfig, outputPath string) error {
	f.timeline = timeline
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("encoded"), 0644)
}

type fakeProber struct {
	result *domain.ProbeResult
	err    error
}

func (f *fakeProber) Probe(ctx context.Context, inputPath string) (*domain.ProbeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// memStore is an in-memory JobStore for worker tests.
type memStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]*domain.Job)}
}

func (s *memStore) Create(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *memStore) Claim(ctx context.Context) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *domain.Job
	for _, job := range s.jobs {
		if job.Status != domain.JobStatusQueued {
			continue
		}
		if oldest == nil || job.CreatedAt.Before(oldest.CreatedAt) {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, nil
	}
	oldest.Status = domain.JobStatusProcessing
	oldest.StartedAt.Time = time.Now().UTC()
	oldest.StartedAt.Valid = true
	copied := *oldest
	return &copied, nil
}

func (s *memStore) SetProgress(ctx context.Context, id string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && job.Status == domain.JobStatusProcessing {
		job.Progress = progress
	}
	return nil
}

func (s *memStore) Complete(ctx context.Context, id string, result domain.AssemblyResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Status = domain.JobStatusCompleted
	job.Progress = domain.ProgressDone
	job.Result = &result
	job.CompletedAt.Time = time.Now().UTC()
	job.CompletedAt.Valid = true
	return nil
}

func (s *memStore) Fail(ctx context.Context, id string, kind domain.Kind, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Status = domain.JobStatusFailed
	job.ErrorKind = kind
	job.ErrorMsg = message
	job.CompletedAt.Time = time.Now().UTC()
	job.CompletedAt.Valid = true
	return nil
}

func (s *memStore) ResetStalled(ctx context.Context) error { return nil }

func (s *memStore) Sweep(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

var errFetchBoom = errors.New("fetch failed")
