package domain

// DefaultClipDuration is assumed when ffprobe cannot report a duration.
// Degrading to a fixed value keeps the assembly going instead of failing
// the whole request over one unreadable header.
const DefaultClipDuration = 8.0

// Clip is one downloaded source, probed and immutable afterwards.
type Clip struct {
	SourceURL string
	LocalPath string
	Duration  float64
	HasAudio  bool
}

// AllHaveAudio reports whether every clip carries an audio stream.
// A single silent clip disables audio mixing for the whole assembly.
func AllHaveAudio(clips []Clip) bool {
	for _, c := range clips {
		if !c.HasAudio {
			return false
		}
	}
	return len(clips) > 0
}
