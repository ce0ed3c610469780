package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
)

func TestFinalizer_Finalize(t *testing.T) {
	workDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "outputs")
	raw := filepath.Join(workDir, "output.mp4")
	require.NoError(t, os.WriteFile(raw, []byte("encoded"), 0644))

	f := NewFinalizer(outputDir, &fakeProber{})
	result, err := f.Finalize(context.Background(), raw, "mp4", 22.0)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(result.Filename, ".mp4"))
	assert.InDelta(t, 22.0, result.DurationSeconds, 1e-9)
	assert.Equal(t, int64(len("encoded")), result.SizeBytes)

	// Raw file was moved, not copied.
	assert.NoFileExists(t, raw)
	assert.FileExists(t, filepath.Join(outputDir, result.Filename))
}

func TestFinalizer_Finalize_ProbeFallback(t *testing.T) {
	workDir := t.TempDir()
	raw := filepath.Join(workDir, "output.mkv")
	require.NoError(t, os.WriteFile(raw, []byte("encoded"), 0644))

	prober := &fakeProber{result: &domain.ProbeResult{Format: domain.ProbeFormat{Duration: "17.5"}}}
	f := NewFinalizer(filepath.Join(t.TempDir(), "outputs"), prober)

	// Unusable computed duration falls back to probing the finalized file.
	result, err := f.Finalize(context.Background(), raw, "mkv", 0)
	require.NoError(t, err)
	assert.InDelta(t, 17.5, result.DurationSeconds, 1e-9)
}

func TestFinalizer_OutputPath(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "present.mp4"), []byte("x"), 0644))

	f := NewFinalizer(outputDir, &fakeProber{})

	path, err := f.OutputPath("present.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "present.mp4"), path)

	_, err = f.OutputPath("swept.mp4")
	assert.ErrorIs(t, err, domain.ErrOutputNotFound)
}
