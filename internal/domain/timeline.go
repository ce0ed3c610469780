package domain

import "fmt"

// TimelineEntry places one clip in the composed output.
type TimelineEntry struct {
	ClipIndex   int
	StartOffset float64
}

// Timeline is the computed placement of every clip plus the total output
// duration. Derived per request, never persisted.
type Timeline struct {
	Entries       []TimelineEntry
	TotalDuration float64
}

// ComposeTimeline computes crossfade start offsets by tracking the
// cumulative composed-output duration: offset[i] = max(0, D - transition),
// then D = offset[i] + duration[i]. The transition window therefore always
// lies inside already-composed content and the total never shrinks below
// the longest prefix. Offsets that would go negative (clip shorter than the
// transition) are clamped to zero, shortening the effective overlap.
func ComposeTimeline(durations []float64, transition float64) (Timeline, error) {
	if len(durations) < 2 {
		return Timeline{}, NewError(KindValidation, "timeline requires at least two clips", nil)
	}
	if transition < 0 {
		return Timeline{}, NewError(KindValidation, "transition duration must not be negative", nil)
	}
	for i, d := range durations {
		if d <= 0 {
			return Timeline{}, NewError(KindValidation, fmt.Sprintf("clip %d has non-positive duration", i), nil)
		}
	}

	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	if sum-float64(len(durations)-1)*transition <= 0 {
		return Timeline{}, NewError(KindValidation, "transition duration consumes the entire assembly", nil)
	}

	entries := make([]TimelineEntry, len(durations))
	entries[0] = TimelineEntry{ClipIndex: 0, StartOffset: 0}

	composed := durations[0]
	for i := 1; i < len(durations); i++ {
		offset := composed - transition
		if offset < 0 {
			offset = 0
		}
		entries[i] = TimelineEntry{ClipIndex: i, StartOffset: offset}
		composed = offset + durations[i]
	}

	return Timeline{Entries: entries, TotalDuration: composed}, nil
}
