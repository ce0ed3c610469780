package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
)

func testRequest(clips int) domain.AssemblyRequest {
	urls := make([]string, clips)
	for i := range urls {
		urls[i] = "https://example.com/clip.mp4"
	}
	return domain.AssemblyRequest{
		ClipURLs:   urls,
		Transition: domain.TransitionConfig{Kind: domain.TransitionFade, Duration: 1},
		Output:     domain.OutputConfig{}.WithDefaults(),
	}
}

func newTestAssembler(t *testing.T, fetcher *fakeFetcher, transcoder *fakeTranscoder) (*Assembler, string) {
	t.Helper()
	dataDir := t.TempDir()
	finalizer := NewFinalizer(filepath.Join(dataDir, "outputs"), &fakeProber{})
	return NewAssembler(fetcher, transcoder, finalizer, dataDir, time.Minute), dataDir
}

func TestAssembler_Assemble(t *testing.T) {
	fetcher := &fakeFetcher{durations: []float64{8, 8, 8}, hasAudio: true}
	transcoder := &fakeTranscoder{}
	assembler, dataDir := newTestAssembler(t, fetcher, transcoder)

	var milestones []int
	result, err := assembler.Assemble(context.Background(), testRequest(3), func(p int) {
		milestones = append(milestones, p)
	})
	require.NoError(t, err)

	assert.InDelta(t, 22.0, result.DurationSeconds, 1e-9)
	assert.Equal(t, int64(len("encoded")), result.SizeBytes)
	assert.NotEmpty(t, result.Filename)

	// Milestones in pipeline order.
	assert.Equal(t, []int{
		domain.ProgressDownloadStarted,
		domain.ProgressDownloadComplete,
		domain.ProgressTranscodeStarted,
		domain.ProgressTranscodeComplete,
	}, milestones)

	// Transcoder saw the composed timeline.
	require.Len(t, transcoder.timeline.Entries, 3)
	assert.InDelta(t, 7.0, transcoder.timeline.Entries[1].StartOffset, 1e-9)

	// Output landed in the outputs dir; the working dir is gone.
	_, err = os.Stat(filepath.Join(dataDir, "outputs", result.Filename))
	assert.NoError(t, err)
	assertWorkDirEmpty(t, dataDir)
}

func TestAssembler_Assemble_FetchFailureCleansUp(t *testing.T) {
	fetcher := &fakeFetcher{err: domain.NewError(domain.KindDownload, "clip not found", errFetchBoom)}
	assembler, dataDir := newTestAssembler(t, fetcher, &fakeTranscoder{})

	_, err := assembler.Assemble(context.Background(), testRequest(2), nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindDownload, domain.KindOf(err))
	assertWorkDirEmpty(t, dataDir)
}

func TestAssembler_Assemble_TranscodeFailureCleansUp(t *testing.T) {
	fetcher := &fakeFetcher{durations: []float64{5, 5}, hasAudio: true}
	transcoder := &fakeTranscoder{err: domain.NewError(domain.KindTranscode, "ffmpeg failed", nil)}
	assembler, dataDir := newTestAssembler(t, fetcher, transcoder)

	_, err := assembler.Assemble(context.Background(), testRequest(2), nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindTranscode, domain.KindOf(err))
	assertWorkDirEmpty(t, dataDir)
}

func TestAssembler_Assemble_RejectsInvalidRequest(t *testing.T) {
	fetcher := &fakeFetcher{}
	assembler, _ := newTestAssembler(t, fetcher, &fakeTranscoder{})

	req := testRequest(1)
	_, err := assembler.Assemble(context.Background(), req, nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Zero(t, fetcher.calls, "validation failures must precede any I/O")
}

func assertWorkDirEmpty(t *testing.T, dataDir string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dataDir, "work"))
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries, "working directories must be removed on terminal states")
}
