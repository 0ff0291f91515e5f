package timeline

import (
	"fmt"
)

// Clip is a trimmed segment of the base track. Duration is the probed
// length of the source media; StartTrim/EndTrim remove seconds from the
// head and tail.
type Clip struct {
	ID        string
	Source    string
	Duration  float64
	StartTrim float64
	EndTrim   float64
}

// EffectiveDuration is the playable length after trims
func (c Clip) EffectiveDuration() float64 {
	return c.Duration - c.StartTrim - c.EndTrim
}

// SubtitleCue is a burned-in text cue active between Start and End
type SubtitleCue struct {
	Text  string
	Start float64
	End   float64
	Style CueStyle
}

// CueStyle controls how a cue is drawn. Zero values fall back to the
// configured subtitle defaults.
type CueStyle struct {
	Font     string
	Size     int
	Color    string
	BoxColor string
	Position string // "top", "middle" or "bottom"
}

// Overlay is a timed graphic or media layer composited onto the base video
type Overlay struct {
	ID       string
	Source   string
	Start    float64
	End      float64
	X        int
	Y        int
	Width    int
	Height   int
	Opacity  float64
	Rotation float64 // degrees
}

// SFXTrack is a timed audio effect mixed over the base audio
type SFXTrack struct {
	ID       string
	Source   string
	Start    float64
	Duration float64
	Volume   float64
}

// IntroOutroEffect applies only at the timeline head or tail
type IntroOutroEffect struct {
	Type     string // "fade-in" / "fade-out"
	Duration float64
}

// Timeline is the canonical in-memory composition. Clip order is the
// slice order; all times are global seconds unless noted.
type Timeline struct {
	Clips       []Clip
	Subtitles   []SubtitleCue
	Overlays    []Overlay
	SFX         []SFXTrack
	Transitions []Descriptor
	Intro       *IntroOutroEffect
	Outro       *IntroOutroEffect
}

// TotalDuration is the sum of effective clip durations
func (t *Timeline) TotalDuration() float64 {
	var total float64
	for _, c := range t.Clips {
		total += c.EffectiveDuration()
	}
	return total
}

// ClipIndex returns the position of a clip id, or -1
func (t *Timeline) ClipIndex(id string) int {
	for i, c := range t.Clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// TransitionBetween returns the descriptor for the (from, to) clip pair,
// if one exists. At most one descriptor exists per adjacent pair.
func (t *Timeline) TransitionBetween(fromID, toID string) *Descriptor {
	for i := range t.Transitions {
		d := &t.Transitions[i]
		if d.FromClip == fromID && d.ToClip == toID {
			return d
		}
	}
	return nil
}

// ValidationError reports a malformed timeline. It is always raised before
// any compilation or scheduling work begins and is recoverable by
// correcting the model.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid timeline: %s: %s", e.Field, e.Reason)
}

// Validate checks the timeline invariants: at least one clip, unique clip
// ids, non-negative effective durations, transition adjacency, at most one
// transition per adjacent pair, and sane overlay/SFX/cue ranges.
func (t *Timeline) Validate() error {
	if len(t.Clips) == 0 {
		return &ValidationError{Field: "clips", Reason: "timeline has no clips"}
	}

	seen := make(map[string]struct{}, len(t.Clips))
	for i, c := range t.Clips {
		if c.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("clips[%d]", i), Reason: "missing id"}
		}
		if _, dup := seen[c.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("clips[%d]", i), Reason: fmt.Sprintf("duplicate clip id %q", c.ID)}
		}
		seen[c.ID] = struct{}{}
		if c.Source == "" {
			return &ValidationError{Field: fmt.Sprintf("clips[%d]", i), Reason: "missing media reference"}
		}
		if c.EffectiveDuration() < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("clips[%d]", i),
				Reason: fmt.Sprintf("trims exceed duration (%.3fs - %.3fs - %.3fs < 0)", c.Duration, c.StartTrim, c.EndTrim),
			}
		}
	}

	pairs := make(map[string]struct{}, len(t.Transitions))
	for i, d := range t.Transitions {
		from := t.ClipIndex(d.FromClip)
		to := t.ClipIndex(d.ToClip)
		if from < 0 || to < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("transitions[%d]", i),
				Reason: fmt.Sprintf("unknown clip reference %q -> %q", d.FromClip, d.ToClip),
			}
		}
		if to != from+1 {
			return &ValidationError{
				Field:  fmt.Sprintf("transitions[%d]", i),
				Reason: fmt.Sprintf("clips %q and %q are not adjacent", d.FromClip, d.ToClip),
			}
		}
		key := d.FromClip + "\x00" + d.ToClip
		if _, dup := pairs[key]; dup {
			return &ValidationError{
				Field:  fmt.Sprintf("transitions[%d]", i),
				Reason: fmt.Sprintf("duplicate transition for pair %q -> %q", d.FromClip, d.ToClip),
			}
		}
		pairs[key] = struct{}{}
		if d.Duration < 0 {
			return &ValidationError{Field: fmt.Sprintf("transitions[%d]", i), Reason: "negative duration"}
		}
		if err := d.validateParams(); err != nil {
			return &ValidationError{Field: fmt.Sprintf("transitions[%d]", i), Reason: err.Error()}
		}
	}

	for i, cue := range t.Subtitles {
		if cue.End <= cue.Start {
			return &ValidationError{Field: fmt.Sprintf("subtitles[%d]", i), Reason: "end must be after start"}
		}
	}

	for i, o := range t.Overlays {
		if o.Source == "" {
			return &ValidationError{Field: fmt.Sprintf("overlays[%d]", i), Reason: "missing media reference"}
		}
		if o.End <= o.Start {
			return &ValidationError{Field: fmt.Sprintf("overlays[%d]", i), Reason: "end must be after start"}
		}
		if o.Opacity < 0 || o.Opacity > 1 {
			return &ValidationError{Field: fmt.Sprintf("overlays[%d]", i), Reason: "opacity out of range [0,1]"}
		}
	}

	for i, s := range t.SFX {
		if s.Source == "" {
			return &ValidationError{Field: fmt.Sprintf("sfx[%d]", i), Reason: "missing media reference"}
		}
		if s.Start < 0 {
			return &ValidationError{Field: fmt.Sprintf("sfx[%d]", i), Reason: "start must not be negative"}
		}
		if s.Duration <= 0 {
			return &ValidationError{Field: fmt.Sprintf("sfx[%d]", i), Reason: "duration must be positive"}
		}
		if s.Volume < 0 || s.Volume > 1 {
			return &ValidationError{Field: fmt.Sprintf("sfx[%d]", i), Reason: "volume out of range [0,1]"}
		}
	}

	return nil
}
