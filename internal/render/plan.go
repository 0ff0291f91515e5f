package render

import (
	"fmt"
	"strings"
)

// Input is one -i entry in the encoder invocation. SeekTo/Limit translate
// clip trims into input-side options.
type Input struct {
	Path     string
	SeekTo   float64 // -ss, seconds; only emitted when HasSeek
	Limit    float64 // -t, seconds; only emitted when HasLimit
	HasSeek  bool
	HasLimit bool
}

// Stage is one named node of the processing graph: an operation consuming
// labeled input pads and producing one labeled output pad.
type Stage struct {
	Op     string
	Inputs []string
	Output string
	Params string
}

// EncodeParams is the fixed encode policy applied to every render
type EncodeParams struct {
	Container    string
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
	FastStart    bool
}

// DefaultEncodeParams returns the fixed export policy: H.264 medium-preset
// CRF quality, AAC audio, streaming-friendly layout.
func DefaultEncodeParams() EncodeParams {
	return EncodeParams{
		Container:    "mp4",
		VideoCodec:   "libx264",
		Preset:       "medium",
		CRF:          23,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		FastStart:    true,
	}
}

// Plan is the compiled render graph handed to the encoder subprocess.
// VideoPad and AudioPad are always "vout" and "aout" regardless of which
// optional features the timeline used.
type Plan struct {
	Inputs        []Input
	Stages        []Stage
	VideoPad      string
	AudioPad      string
	Encode        EncodeParams
	TotalDuration float64
}

// FilterComplex renders the graph as the encoder's single combined filter
// argument: semicolon-joined "[in]op=params[out]" expressions in stage
// order.
func (p *Plan) FilterComplex() string {
	exprs := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		var b strings.Builder
		for _, in := range s.Inputs {
			b.WriteString("[")
			b.WriteString(in)
			b.WriteString("]")
		}
		b.WriteString(s.Op)
		if s.Params != "" {
			b.WriteString("=")
			b.WriteString(s.Params)
		}
		b.WriteString("[")
		b.WriteString(s.Output)
		b.WriteString("]")
		exprs = append(exprs, b.String())
	}
	return strings.Join(exprs, ";")
}

// CommandArgs renders the deterministic encoder argument list, trailing
// output path last. The runner prepends its own base flags (-y etc).
func (p *Plan) CommandArgs(output string) []string {
	args := make([]string, 0, 16+4*len(p.Inputs))
	for _, in := range p.Inputs {
		if in.HasSeek {
			args = append(args, "-ss", fmt.Sprintf("%.3f", in.SeekTo))
		}
		if in.HasLimit {
			args = append(args, "-t", fmt.Sprintf("%.3f", in.Limit))
		}
		args = append(args, "-i", in.Path)
	}

	args = append(args, "-filter_complex", p.FilterComplex())
	args = append(args,
		"-map", "["+p.VideoPad+"]",
		"-map", "["+p.AudioPad+"]",
	)

	args = append(args,
		"-c:v", p.Encode.VideoCodec,
		"-preset", p.Encode.Preset,
		"-crf", fmt.Sprintf("%d", p.Encode.CRF),
		"-c:a", p.Encode.AudioCodec,
		"-b:a", p.Encode.AudioBitrate,
	)
	if p.Encode.FastStart {
		args = append(args, "-movflags", "+faststart")
	}

	args = append(args, output)
	return args
}
