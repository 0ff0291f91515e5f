// Package project persists compositions as YAML documents and rebuilds
// the in-memory timeline from them.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cutforge/cutforge/internal/timeline"
	"github.com/cutforge/cutforge/pkg/util"
)

// Project is one saved composition plus its output settings
type Project struct {
	ID       string
	Name     string
	Output   string
	Timeline *timeline.Timeline
}

// Document is the on-disk YAML shape. Transition payloads are flattened
// into optional fields here because the in-memory form is an interface.
type Document struct {
	ID     string       `yaml:"id,omitempty"`
	Name   string       `yaml:"name"`
	Output string       `yaml:"output,omitempty"`
	Clips  []clipDoc    `yaml:"clips"`
	Subs   []cueDoc     `yaml:"subtitles,omitempty"`
	Layers []overlayDoc `yaml:"overlays,omitempty"`
	SFX    []sfxDoc     `yaml:"sfx,omitempty"`
	Trans  []transDoc   `yaml:"transitions,omitempty"`
	Intro  *effectDoc   `yaml:"intro,omitempty"`
	Outro  *effectDoc   `yaml:"outro,omitempty"`
}

type clipDoc struct {
	ID        string  `yaml:"id,omitempty"`
	Source    string  `yaml:"source"`
	Duration  float64 `yaml:"duration"`
	StartTrim float64 `yaml:"start_trim,omitempty"`
	EndTrim   float64 `yaml:"end_trim,omitempty"`
}

type cueDoc struct {
	Text     string  `yaml:"text"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
	Font     string  `yaml:"font,omitempty"`
	Size     int     `yaml:"size,omitempty"`
	Color    string  `yaml:"color,omitempty"`
	BoxColor string  `yaml:"box_color,omitempty"`
	Position string  `yaml:"position,omitempty"`
}

type overlayDoc struct {
	ID       string  `yaml:"id,omitempty"`
	Source   string  `yaml:"source"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Width    int     `yaml:"width,omitempty"`
	Height   int     `yaml:"height,omitempty"`
	Opacity  float64 `yaml:"opacity,omitempty"`
	Rotation float64 `yaml:"rotation,omitempty"`
}

type sfxDoc struct {
	ID       string  `yaml:"id,omitempty"`
	Source   string  `yaml:"source"`
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
	Volume   float64 `yaml:"volume"`
}

type transDoc struct {
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	Type     string  `yaml:"type"`
	Duration float64 `yaml:"duration"`
	Easing   string  `yaml:"easing,omitempty"`
	// family-specific payload, all optional
	Color     string  `yaml:"color,omitempty"`
	Intensity float64 `yaml:"intensity,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
}

type effectDoc struct {
	Type     string  `yaml:"type"`
	Duration float64 `yaml:"duration"`
}

// Load reads and decodes a project file, backfilling missing identifiers
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	return fromDocument(&doc), nil
}

// Save encodes and writes the project, creating parent directories
func Save(path string, p *Project) error {
	doc := toDocument(p)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

func fromDocument(doc *Document) *Project {
	p := &Project{
		ID:       orNewID(doc.ID),
		Name:     doc.Name,
		Output:   doc.Output,
		Timeline: &timeline.Timeline{},
	}
	tl := p.Timeline

	for _, c := range doc.Clips {
		tl.Clips = append(tl.Clips, timeline.Clip{
			ID:        orNewID(c.ID),
			Source:    c.Source,
			Duration:  c.Duration,
			StartTrim: c.StartTrim,
			EndTrim:   c.EndTrim,
		})
	}
	for _, cue := range doc.Subs {
		tl.Subtitles = append(tl.Subtitles, timeline.SubtitleCue{
			Text:  cue.Text,
			Start: cue.Start,
			End:   cue.End,
			Style: timeline.CueStyle{
				Font:     cue.Font,
				Size:     cue.Size,
				Color:    cue.Color,
				BoxColor: cue.BoxColor,
				Position: cue.Position,
			},
		})
	}
	for _, o := range doc.Layers {
		opacity := o.Opacity
		if opacity == 0 {
			opacity = 1
		}
		tl.Overlays = append(tl.Overlays, timeline.Overlay{
			ID:       orNewID(o.ID),
			Source:   o.Source,
			Start:    o.Start,
			End:      o.End,
			X:        o.X,
			Y:        o.Y,
			Width:    o.Width,
			Height:   o.Height,
			Opacity:  opacity,
			Rotation: o.Rotation,
		})
	}
	for _, s := range doc.SFX {
		tl.SFX = append(tl.SFX, timeline.SFXTrack{
			ID:       orNewID(s.ID),
			Source:   s.Source,
			Start:    s.Start,
			Duration: s.Duration,
			Volume:   s.Volume,
		})
	}
	for _, t := range doc.Trans {
		tl.Transitions = append(tl.Transitions, timeline.Descriptor{
			FromClip: t.From,
			ToClip:   t.To,
			Type:     timeline.ParseType(t.Type),
			Duration: t.Duration,
			Easing:   timeline.Easing(t.Easing),
			Params:   paramsFromDoc(t),
		})
	}
	if doc.Intro != nil {
		tl.Intro = &timeline.IntroOutroEffect{Type: doc.Intro.Type, Duration: doc.Intro.Duration}
	}
	if doc.Outro != nil {
		tl.Outro = &timeline.IntroOutroEffect{Type: doc.Outro.Type, Duration: doc.Outro.Duration}
	}
	return p
}

// paramsFromDoc keeps payloads family-scoped so an old document with a
// stray field cannot produce an invalid combination
func paramsFromDoc(t transDoc) timeline.Params {
	switch timeline.ParseType(t.Type).Family() {
	case timeline.FamilyFlash:
		if t.Color != "" {
			return timeline.FlashParams{Color: t.Color}
		}
	case timeline.FamilyGlitch:
		if t.Intensity > 0 {
			return timeline.GlitchParams{Intensity: t.Intensity}
		}
	case timeline.FamilyMotion:
		if t.Amplitude > 0 {
			return timeline.MotionParams{Amplitude: t.Amplitude}
		}
	}
	return nil
}

func toDocument(p *Project) *Document {
	doc := &Document{
		ID:     orNewID(p.ID),
		Name:   p.Name,
		Output: p.Output,
	}
	tl := p.Timeline
	if tl == nil {
		return doc
	}

	for _, c := range tl.Clips {
		doc.Clips = append(doc.Clips, clipDoc{
			ID:        orNewID(c.ID),
			Source:    c.Source,
			Duration:  c.Duration,
			StartTrim: c.StartTrim,
			EndTrim:   c.EndTrim,
		})
	}
	for _, cue := range tl.Subtitles {
		doc.Subs = append(doc.Subs, cueDoc{
			Text:     cue.Text,
			Start:    cue.Start,
			End:      cue.End,
			Font:     cue.Style.Font,
			Size:     cue.Style.Size,
			Color:    cue.Style.Color,
			BoxColor: cue.Style.BoxColor,
			Position: cue.Style.Position,
		})
	}
	for _, o := range tl.Overlays {
		doc.Layers = append(doc.Layers, overlayDoc{
			ID:       orNewID(o.ID),
			Source:   o.Source,
			Start:    o.Start,
			End:      o.End,
			X:        o.X,
			Y:        o.Y,
			Width:    o.Width,
			Height:   o.Height,
			Opacity:  o.Opacity,
			Rotation: o.Rotation,
		})
	}
	for _, s := range tl.SFX {
		doc.SFX = append(doc.SFX, sfxDoc{
			ID:       orNewID(s.ID),
			Source:   s.Source,
			Start:    s.Start,
			Duration: s.Duration,
			Volume:   s.Volume,
		})
	}
	for _, t := range tl.Transitions {
		td := transDoc{
			From:     t.FromClip,
			To:       t.ToClip,
			Type:     string(t.Type),
			Duration: t.Duration,
			Easing:   string(t.Easing),
		}
		switch params := t.Params.(type) {
		case timeline.FlashParams:
			td.Color = params.Color
		case timeline.GlitchParams:
			td.Intensity = params.Intensity
		case timeline.MotionParams:
			td.Amplitude = params.Amplitude
		}
		doc.Trans = append(doc.Trans, td)
	}
	if tl.Intro != nil {
		doc.Intro = &effectDoc{Type: tl.Intro.Type, Duration: tl.Intro.Duration}
	}
	if tl.Outro != nil {
		doc.Outro = &effectDoc{Type: tl.Outro.Type, Duration: tl.Outro.Duration}
	}
	return doc
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
