package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeTimeline_ThreeEqualClips(t *testing.T) {
	// Three 8s clips with a 1s crossfade: offsets 0/7/14, total 22s.
	tl, err := ComposeTimeline([]float64{8, 8, 8}, 1)
	require.NoError(t, err)

	require.Len(t, tl.Entries, 3)
	assert.InDelta(t, 0.0, tl.Entries[0].StartOffset, 1e-9)
	assert.InDelta(t, 7.0, tl.Entries[1].StartOffset, 1e-9)
	assert.InDelta(t, 14.0, tl.Entries[2].StartOffset, 1e-9)
	assert.InDelta(t, 22.0, tl.TotalDuration, 1e-9)
}

func TestComposeTimeline_TwoClips(t *testing.T) {
	tl, err := ComposeTimeline([]float64{5, 5}, 1)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, tl.Entries[1].StartOffset, 1e-9)
	assert.InDelta(t, 9.0, tl.TotalDuration, 1e-9)
}

func TestComposeTimeline_TotalFormula(t *testing.T) {
	// total = sum(durations) - (n-1)*transition whenever no offset clamps.
	tests := []struct {
		name       string
		durations  []float64
		transition float64
	}{
		{"uniform", []float64{8, 8, 8}, 1},
		{"mixed", []float64{3.5, 10, 6.25, 4}, 2},
		{"zero transition", []float64{5, 7, 9}, 0},
		{"fractional", []float64{2.2, 3.3, 4.4}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, err := ComposeTimeline(tt.durations, tt.transition)
			require.NoError(t, err)

			sum := 0.0
			for _, d := range tt.durations {
				sum += d
			}
			want := sum - float64(len(tt.durations)-1)*tt.transition
			assert.InDelta(t, want, tl.TotalDuration, 1e-9)
		})
	}
}

func TestComposeTimeline_OffsetsMonotonic(t *testing.T) {
	tl, err := ComposeTimeline([]float64{1.5, 0.8, 12, 3, 0.9, 6}, 1)
	require.NoError(t, err)

	for i := 1; i < len(tl.Entries); i++ {
		assert.GreaterOrEqual(t, tl.Entries[i].StartOffset, tl.Entries[i-1].StartOffset,
			"offset %d must not precede offset %d", i, i-1)
		assert.GreaterOrEqual(t, tl.Entries[i].StartOffset, 0.0)
	}
	assert.GreaterOrEqual(t, tl.TotalDuration, tl.Entries[len(tl.Entries)-1].StartOffset)
}

func TestComposeTimeline_ClampsShortClip(t *testing.T) {
	// First clip shorter than the transition: the second offset clamps to 0
	// instead of going negative, shortening the effective overlap.
	tl, err := ComposeTimeline([]float64{0.5, 8}, 1)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, tl.Entries[1].StartOffset, 1e-9)
	assert.InDelta(t, 8.0, tl.TotalDuration, 1e-9)
}

func TestComposeTimeline_Deterministic(t *testing.T) {
	durations := []float64{4, 5, 6}

	first, err := ComposeTimeline(durations, 1.5)
	require.NoError(t, err)
	second, err := ComposeTimeline(durations, 1.5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComposeTimeline_Errors(t *testing.T) {
	tests := []struct {
		name       string
		durations  []float64
		transition float64
	}{
		{"single clip", []float64{8}, 1},
		{"no clips", nil, 1},
		{"negative transition", []float64{8, 8}, -1},
		{"zero duration clip", []float64{8, 0}, 1},
		{"negative duration clip", []float64{8, -2}, 1},
		{"transition consumes assembly", []float64{1, 1, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComposeTimeline(tt.durations, tt.transition)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}
