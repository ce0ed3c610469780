package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
)

// Canvas normalization applied to every clip before compositing.
const (
	frameRate    = 30
	pixelFormat  = "yuv420p"
	sampleFormat = "fltp"
	sampleRate   = 44100
	channels     = "stereo"
)

// FilterArg is one key=value option of a filter node.
type FilterArg struct {
	Key   string
	Value string
}

// Filter is a single node in the graph (scale, pad, xfade, amix, ...).
type Filter struct {
	Name string
	Args []FilterArg
}

// Chain is a linear run of filters between named pads.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

// Graph is the full -filter_complex description. It is built from typed
// nodes and serialized in exactly one place so user-controlled values are
// escaped exactly once.
type Graph struct {
	chains []Chain
}

func (g *Graph) Add(chain Chain) {
	g.chains = append(g.chains, chain)
}

// String renders the graph in ffmpeg filter syntax:
// [in]name=k=v:k=v,name[out];[..]...
func (g *Graph) String() string {
	var sb strings.Builder
	for ci, chain := range g.chains {
		if ci > 0 {
			sb.WriteByte(';')
		}
		for _, in := range chain.Inputs {
			sb.WriteByte('[')
			sb.WriteString(in)
			sb.WriteByte(']')
		}
		for fi, f := range chain.Filters {
			if fi > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Name)
			for ai, a := range f.Args {
				if ai == 0 {
					sb.WriteByte('=')
				} else {
					sb.WriteByte(':')
				}
				if a.Key != "" {
					sb.WriteString(a.Key)
					sb.WriteByte('=')
				}
				sb.WriteString(escapeFilterValue(a.Value))
			}
		}
		for _, out := range chain.Outputs {
			sb.WriteByte('[')
			sb.WriteString(out)
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// escapeFilterValue escapes the characters ffmpeg's filter parser treats as
// structure. Applied to every option value, including computed ones, so no
// call site ever concatenates raw strings into the graph.
func escapeFilterValue(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '\'', ':', ',', ';', '[', ']':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// AssemblyGraph translates a computed timeline into the concrete filter
// graph: per-clip normalization, a chain of n-1 video crossfades, and, when
// audio is enabled, a parallel delay/fade/pad/mix chain. A zero transition
// degenerates to plain concatenation.
func AssemblyGraph(clips []domain.Clip, timeline domain.Timeline, transition domain.TransitionConfig, output domain.OutputConfig, audioEnabled bool) *Graph {
	g := &Graph{}

	for i := range clips {
		g.Add(videoNormalizeChain(i, output))
	}

	if transition.Duration == 0 {
		addConcatChains(g, clips, audioEnabled)
		return g
	}

	// Crossfade chain: each step blends the composed stream so far with the
	// next clip at its timeline offset.
	prev := "v0"
	for i := 1; i < len(clips); i++ {
		out := fmt.Sprintf("vx%d", i)
		if i == len(clips)-1 {
			out = "vout"
		}
		g.Add(Chain{
			Inputs: []string{prev, fmt.Sprintf("v%d", i)},
			Filters: []Filter{{Name: "xfade", Args: []FilterArg{
				{Key: "transition", Value: string(transition.Kind)},
				{Key: "duration", Value: formatSeconds(transition.Duration)},
				{Key: "offset", Value: formatSeconds(timeline.Entries[i].StartOffset)},
			}}},
			Outputs: []string{out},
		})
		prev = out
	}

	if !audioEnabled {
		return g
	}

	for i, clip := range clips {
		g.Add(audioPrepareChain(i, clip, timeline, transition, len(clips)))
	}
	inputs := make([]string, len(clips))
	for i := range clips {
		inputs[i] = fmt.Sprintf("a%d", i)
	}
	g.Add(Chain{
		Inputs: inputs,
		Filters: []Filter{{Name: "amix", Args: []FilterArg{
			{Key: "inputs", Value: strconv.Itoa(len(clips))},
			{Key: "duration", Value: "longest"},
			{Key: "normalize", Value: "0"},
		}}},
		Outputs: []string{"aout"},
	})

	return g
}

// videoNormalizeChain scales a clip to fit the canvas preserving aspect
// ratio, pads it to the exact size, and normalizes SAR, frame rate and
// pixel format so xfade inputs match.
func videoNormalizeChain(index int, output domain.OutputConfig) Chain {
	w := strconv.Itoa(output.Width)
	h := strconv.Itoa(output.Height)
	return Chain{
		Inputs: []string{fmt.Sprintf("%d:v", index)},
		Filters: []Filter{
			{Name: "scale", Args: []FilterArg{
				{Value: w}, {Value: h},
				{Key: "force_original_aspect_ratio", Value: "decrease"},
			}},
			{Name: "pad", Args: []FilterArg{
				{Value: w}, {Value: h},
				{Value: "(ow-iw)/2"}, {Value: "(oh-ih)/2"},
			}},
			{Name: "setsar", Args: []FilterArg{{Value: "1"}}},
			{Name: "fps", Args: []FilterArg{{Value: strconv.Itoa(frameRate)}}},
			{Name: "format", Args: []FilterArg{{Value: pixelFormat}}},
		},
		Outputs: []string{fmt.Sprintf("v%d", index)},
	}
}

// audioPrepareChain normalizes one clip's audio and aligns it with the
// video timeline. Fades use local (pre-shift) timestamps; the delay then
// moves the stream to its output offset and apad extends it to the full
// output duration so amix never truncates a trailing tail.
func audioPrepareChain(index int, clip domain.Clip, timeline domain.Timeline, transition domain.TransitionConfig, clipCount int) Chain {
	filters := []Filter{
		{Name: "aformat", Args: []FilterArg{
			{Key: "sample_fmts", Value: sampleFormat},
			{Key: "sample_rates", Value: strconv.Itoa(sampleRate)},
			{Key: "channel_layouts", Value: channels},
		}},
		{Name: "atrim", Args: []FilterArg{
			{Key: "start", Value: "0"},
			{Key: "end", Value: formatSeconds(clip.Duration)},
		}},
		{Name: "asetpts", Args: []FilterArg{{Value: "PTS-STARTPTS"}}},
	}

	if index > 0 {
		filters = append(filters, Filter{Name: "afade", Args: []FilterArg{
			{Key: "t", Value: "in"},
			{Key: "st", Value: "0"},
			{Key: "d", Value: formatSeconds(transition.Duration)},
		}})
	}
	if index < clipCount-1 {
		fadeStart := clip.Duration - transition.Duration
		if fadeStart < 0 {
			fadeStart = 0
		}
		filters = append(filters, Filter{Name: "afade", Args: []FilterArg{
			{Key: "t", Value: "out"},
			{Key: "st", Value: formatSeconds(fadeStart)},
			{Key: "d", Value: formatSeconds(transition.Duration)},
		}})
	}

	if offset := timeline.Entries[index].StartOffset; offset > 0 {
		delayMs := strconv.Itoa(int(offset * 1000))
		filters = append(filters, Filter{Name: "adelay", Args: []FilterArg{
			{Key: "delays", Value: delayMs},
			{Key: "all", Value: "1"},
		}})
	}

	filters = append(filters, Filter{Name: "apad", Args: []FilterArg{
		{Key: "whole_dur", Value: formatSeconds(timeline.TotalDuration)},
	}})

	return Chain{
		Inputs:  []string{fmt.Sprintf("%d:a", index)},
		Filters: filters,
		Outputs: []string{fmt.Sprintf("a%d", index)},
	}
}

// addConcatChains emits the zero-transition path: back-to-back
// concatenation with no overlap.
func addConcatChains(g *Graph, clips []domain.Clip, audioEnabled bool) {
	if !audioEnabled {
		inputs := make([]string, len(clips))
		for i := range clips {
			inputs[i] = fmt.Sprintf("v%d", i)
		}
		g.Add(Chain{
			Inputs: inputs,
			Filters: []Filter{{Name: "concat", Args: []FilterArg{
				{Key: "n", Value: strconv.Itoa(len(clips))},
				{Key: "v", Value: "1"},
				{Key: "a", Value: "0"},
			}}},
			Outputs: []string{"vout"},
		})
		return
	}

	inputs := make([]string, 0, len(clips)*2)
	for i, clip := range clips {
		g.Add(Chain{
			Inputs: []string{fmt.Sprintf("%d:a", i)},
			Filters: []Filter{
				{Name: "aformat", Args: []FilterArg{
					{Key: "sample_fmts", Value: sampleFormat},
					{Key: "sample_rates", Value: strconv.Itoa(sampleRate)},
					{Key: "channel_layouts", Value: channels},
				}},
				{Name: "atrim", Args: []FilterArg{
					{Key: "start", Value: "0"},
					{Key: "end", Value: formatSeconds(clip.Duration)},
				}},
				{Name: "asetpts", Args: []FilterArg{{Value: "PTS-STARTPTS"}}},
			},
			Outputs: []string{fmt.Sprintf("an%d", i)},
		})
		inputs = append(inputs, fmt.Sprintf("v%d", i), fmt.Sprintf("an%d", i))
	}
	g.Add(Chain{
		Inputs: inputs,
		Filters: []Filter{{Name: "concat", Args: []FilterArg{
			{Key: "n", Value: strconv.Itoa(len(clips))},
			{Key: "v", Value: "1"},
			{Key: "a", Value: "1"},
		}}},
		Outputs: []string{"vout", "aout"},
	})
}
