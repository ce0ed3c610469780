package domain

import "fmt"

type TransitionKind string

const TransitionFade TransitionKind = "fade"

// TransitionConfig describes the crossfade between consecutive clips.
type TransitionConfig struct {
	Kind     TransitionKind
	Duration float64
}

const (
	DefaultTransitionDuration = 1.0
	MaxTransitionDuration     = 30.0
)

func (t TransitionConfig) Validate() error {
	if t.Kind != TransitionFade {
		return NewError(KindValidation, fmt.Sprintf("unsupported transition kind: %q", t.Kind), nil)
	}
	if t.Duration < 0 {
		return NewError(KindValidation, "transition duration must not be negative", nil)
	}
	if t.Duration > MaxTransitionDuration {
		return NewError(KindValidation, fmt.Sprintf("transition duration exceeds %gs", MaxTransitionDuration), nil)
	}
	return nil
}

// OutputConfig is the canvas every clip is scaled and padded into.
type OutputConfig struct {
	Format string
	Width  int
	Height int
}

const (
	DefaultOutputFormat = "mp4"
	DefaultOutputWidth  = 1280
	DefaultOutputHeight = 720
	maxOutputDimension  = 4096
)

var supportedFormats = map[string]bool{
	"mp4":  true,
	"webm": true,
	"mov":  true,
	"mkv":  true,
}

// WithDefaults fills unset fields with the service defaults.
func (o OutputConfig) WithDefaults() OutputConfig {
	if o.Format == "" {
		o.Format = DefaultOutputFormat
	}
	if o.Width == 0 {
		o.Width = DefaultOutputWidth
	}
	if o.Height == 0 {
		o.Height = DefaultOutputHeight
	}
	return o
}

func (o OutputConfig) Validate() error {
	if !supportedFormats[o.Format] {
		return NewError(KindValidation, fmt.Sprintf("unsupported container format: %q", o.Format), nil)
	}
	if o.Width < 16 || o.Width > maxOutputDimension || o.Height < 16 || o.Height > maxOutputDimension {
		return NewError(KindValidation, fmt.Sprintf("output dimensions %dx%d out of range", o.Width, o.Height), nil)
	}
	if o.Width%2 != 0 || o.Height%2 != 0 {
		return NewError(KindValidation, "output dimensions must be even", nil)
	}
	return nil
}

// AssemblyRequest is a validated multi-clip assembly order.
type AssemblyRequest struct {
	ClipURLs    []string
	Transition  TransitionConfig
	Output      OutputConfig
	CallbackURL string
}

func (r AssemblyRequest) Validate() error {
	if len(r.ClipURLs) < 2 {
		return NewError(KindValidation, "at least two clips are required", nil)
	}
	for i, u := range r.ClipURLs {
		if u == "" {
			return NewError(KindValidation, fmt.Sprintf("clip %d: empty url", i), nil)
		}
	}
	if err := r.Transition.Validate(); err != nil {
		return err
	}
	return r.Output.Validate()
}

// AssemblyResult is the finalized, retrievable output of one assembly.
type AssemblyResult struct {
	Filename        string  `json:"filename"`
	DurationSeconds float64 `json:"durationSeconds"`
	SizeBytes       int64   `json:"sizeBytes"`
}
