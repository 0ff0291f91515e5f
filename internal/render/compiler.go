package render

import (
	"fmt"
	"strings"

	"github.com/cutforge/cutforge/internal/media"
	"github.com/cutforge/cutforge/internal/timeline"
)

// SubtitleDefaults fills in cue styles that the timeline leaves unset
type SubtitleDefaults struct {
	Font     string
	Size     int
	Color    string
	BoxColor string
	Position string
}

// Compiler turns a validated timeline into a Plan. Compilation is pure and
// deterministic: the same timeline and resolver answers always produce a
// byte-identical plan.
type Compiler struct {
	resolver media.Resolver
	defaults SubtitleDefaults
}

// NewCompiler creates a compiler using the given asset resolver
func NewCompiler(resolver media.Resolver, defaults SubtitleDefaults) *Compiler {
	if defaults.Size == 0 {
		defaults.Size = 24
	}
	if defaults.Color == "" {
		defaults.Color = "white"
	}
	if defaults.BoxColor == "" {
		defaults.BoxColor = "black@0.5"
	}
	if defaults.Position == "" {
		defaults.Position = "bottom"
	}
	return &Compiler{resolver: resolver, defaults: defaults}
}

// Compile builds the render plan for a timeline whose base track has been
// assembled into a single clip. All validation failures surface here,
// before any stage is built; nothing is deferred to the subprocess.
func (c *Compiler) Compile(tl *timeline.Timeline) (*Plan, error) {
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	if len(tl.Clips) != 1 {
		return nil, &timeline.ValidationError{
			Field:  "clips",
			Reason: fmt.Sprintf("render requires a single assembled base clip, got %d", len(tl.Clips)),
		}
	}

	base := tl.Clips[0]
	basePath, ok := c.resolver.Resolve(base.Source)
	if !ok {
		return nil, &timeline.ValidationError{
			Field:  "clips[0]",
			Reason: fmt.Sprintf("media reference %q cannot be resolved", base.Source),
		}
	}

	plan := &Plan{
		VideoPad:      "vout",
		AudioPad:      "aout",
		Encode:        DefaultEncodeParams(),
		TotalDuration: base.EffectiveDuration(),
	}

	baseInput := Input{Path: basePath}
	if base.StartTrim > 0 {
		baseInput.SeekTo = base.StartTrim
		baseInput.HasSeek = true
	}
	if base.StartTrim > 0 || base.EndTrim > 0 {
		baseInput.Limit = base.EffectiveDuration()
		baseInput.HasLimit = true
	}
	plan.Inputs = append(plan.Inputs, baseInput)

	// Input order is fixed: base, then SFX tracks, then overlay media.
	// Pad indices below depend on it.
	for i, track := range tl.SFX {
		path, ok := c.resolver.Resolve(track.Source)
		if !ok {
			return nil, &timeline.ValidationError{
				Field:  fmt.Sprintf("sfx[%d]", i),
				Reason: fmt.Sprintf("media reference %q cannot be resolved", track.Source),
			}
		}
		plan.Inputs = append(plan.Inputs, Input{Path: path})
	}
	overlayInputBase := 1 + len(tl.SFX)
	for i, ov := range tl.Overlays {
		path, ok := c.resolver.Resolve(ov.Source)
		if !ok {
			return nil, &timeline.ValidationError{
				Field:  fmt.Sprintf("overlays[%d]", i),
				Reason: fmt.Sprintf("media reference %q cannot be resolved", ov.Source),
			}
		}
		plan.Inputs = append(plan.Inputs, Input{Path: path})
	}

	c.compileVideo(plan, tl)
	c.compileAudio(plan, tl, overlayInputBase)

	return plan, nil
}

func (c *Compiler) compileVideo(plan *Plan, tl *timeline.Timeline) {
	pad := "0:v"

	if tl.Intro != nil && tl.Intro.Duration > 0 {
		plan.Stages = append(plan.Stages, Stage{
			Op:     "fade",
			Inputs: []string{pad},
			Output: "v_fin",
			Params: fmt.Sprintf("t=in:st=0:d=%.3f", tl.Intro.Duration),
		})
		pad = "v_fin"
	}
	if tl.Outro != nil && tl.Outro.Duration > 0 {
		start := plan.TotalDuration - tl.Outro.Duration
		if start < 0 {
			start = 0
		}
		plan.Stages = append(plan.Stages, Stage{
			Op:     "fade",
			Inputs: []string{pad},
			Output: "v_fout",
			Params: fmt.Sprintf("t=out:st=%.3f:d=%.3f", start, tl.Outro.Duration),
		})
		pad = "v_fout"
	}

	// Burn subtitle cues in cue order, each gated to its [start,end) window
	for i, cue := range tl.Subtitles {
		out := fmt.Sprintf("v_sub%d", i+1)
		if i == len(tl.Subtitles)-1 {
			out = "v_sub"
		}
		plan.Stages = append(plan.Stages, Stage{
			Op:     "drawtext",
			Inputs: []string{pad},
			Output: out,
			Params: c.drawtextParams(cue),
		})
		pad = out
	}

	if len(tl.Overlays) == 0 {
		// Explicit passthrough so output arity never depends on features
		plan.Stages = append(plan.Stages, Stage{
			Op:     "null",
			Inputs: []string{pad},
			Output: "vout",
		})
		return
	}

	overlayInputBase := 1 + len(tl.SFX)
	for i, ov := range tl.Overlays {
		idx := overlayInputBase + i
		n := i + 1
		ovPad := fmt.Sprintf("%d:v", idx)

		scaled := fmt.Sprintf("o%d_scaled", n)
		plan.Stages = append(plan.Stages, Stage{
			Op:     "scale",
			Inputs: []string{ovPad},
			Output: scaled,
			Params: fmt.Sprintf("%d:%d", ov.Width, ov.Height),
		})
		ovPad = scaled

		if ov.Opacity > 0 && ov.Opacity < 1 {
			rgba := fmt.Sprintf("o%d_rgba", n)
			plan.Stages = append(plan.Stages, Stage{
				Op:     "format",
				Inputs: []string{ovPad},
				Output: rgba,
				Params: "rgba",
			})
			alpha := fmt.Sprintf("o%d_alpha", n)
			plan.Stages = append(plan.Stages, Stage{
				Op:     "colorchannelmixer",
				Inputs: []string{rgba},
				Output: alpha,
				Params: fmt.Sprintf("aa=%.2f", ov.Opacity),
			})
			ovPad = alpha
		}

		if ov.Rotation != 0 {
			rot := fmt.Sprintf("o%d_rot", n)
			plan.Stages = append(plan.Stages, Stage{
				Op:     "rotate",
				Inputs: []string{ovPad},
				Output: rot,
				Params: fmt.Sprintf("%.6f:c=black@0", ov.Rotation*3.141592653589793/180),
			})
			ovPad = rot
		}

		out := fmt.Sprintf("v_ovl%d", n)
		if i == len(tl.Overlays)-1 {
			out = "vout"
		}
		plan.Stages = append(plan.Stages, Stage{
			Op:     "overlay",
			Inputs: []string{pad, ovPad},
			Output: out,
			Params: fmt.Sprintf("%d:%d:enable='between(t,%.3f,%.3f)'", ov.X, ov.Y, ov.Start, ov.End),
		})
		pad = out
	}
}

func (c *Compiler) compileAudio(plan *Plan, tl *timeline.Timeline, overlayInputBase int) {
	if len(tl.SFX) == 0 {
		plan.Stages = append(plan.Stages, Stage{
			Op:     "anull",
			Inputs: []string{"0:a"},
			Output: "aout",
		})
		return
	}

	mixInputs := make([]string, 0, len(tl.SFX)+1)
	mixInputs = append(mixInputs, "0:a")
	weights := make([]string, 0, len(tl.SFX)+1)
	weights = append(weights, "1")

	for i, track := range tl.SFX {
		delayMs := int(track.Start * 1000)
		out := fmt.Sprintf("a_sfx%d", i+1)
		plan.Stages = append(plan.Stages, Stage{
			Op:     "adelay",
			Inputs: []string{fmt.Sprintf("%d:a", i+1)},
			Output: out,
			Params: fmt.Sprintf("%d|%d", delayMs, delayMs),
		})
		mixInputs = append(mixInputs, out)
		weights = append(weights, fmt.Sprintf("%.3f", track.Volume))
	}

	// Mix extends to the longest input; shorter inputs drop out smoothly
	plan.Stages = append(plan.Stages, Stage{
		Op:     "amix",
		Inputs: mixInputs,
		Output: "aout",
		Params: fmt.Sprintf("inputs=%d:duration=longest:dropout_transition=2:weights='%s'",
			len(mixInputs), strings.Join(weights, " ")),
	})
}

func (c *Compiler) drawtextParams(cue timeline.SubtitleCue) string {
	style := cue.Style
	if style.Font == "" {
		style.Font = c.defaults.Font
	}
	if style.Size == 0 {
		style.Size = c.defaults.Size
	}
	if style.Color == "" {
		style.Color = c.defaults.Color
	}
	if style.BoxColor == "" {
		style.BoxColor = c.defaults.BoxColor
	}
	if style.Position == "" {
		style.Position = c.defaults.Position
	}

	var y string
	switch style.Position {
	case "top":
		y = "40"
	case "middle":
		y = "(h-text_h)/2"
	default:
		y = "h-text_h-40"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "text='%s'", escapeDrawtext(cue.Text))
	if style.Font != "" {
		fmt.Fprintf(&b, ":font='%s'", style.Font)
	}
	fmt.Fprintf(&b, ":fontsize=%d:fontcolor=%s", style.Size, style.Color)
	fmt.Fprintf(&b, ":box=1:boxcolor=%s", style.BoxColor)
	fmt.Fprintf(&b, ":x=(w-text_w)/2:y=%s", y)
	fmt.Fprintf(&b, ":enable='between(t,%.3f,%.3f)'", cue.Start, cue.End)
	return b.String()
}

// escapeDrawtext escapes characters with filter-level meaning inside a
// drawtext text value
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}
