package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cutforge/cutforge/internal/timeline"
)

func sampleProject() *Project {
	return &Project{
		Name:   "demo",
		Output: "out.mp4",
		Timeline: &timeline.Timeline{
			Clips: []timeline.Clip{
				{ID: "a", Source: "a.mp4", Duration: 10, StartTrim: 1},
				{ID: "b", Source: "b.mp4", Duration: 8},
			},
			SFX: []timeline.SFXTrack{
				{ID: "s1", Source: "boom.wav", Start: 5, Duration: 3, Volume: 0.5},
			},
			Transitions: []timeline.Descriptor{
				{
					FromClip: "a", ToClip: "b",
					Type:     timeline.TypeFlashWhite,
					Duration: 0.5,
					Easing:   timeline.EaseInOut,
					Params:   timeline.FlashParams{Color: "white"},
				},
			},
			Intro: &timeline.IntroOutroEffect{Type: "fade-in", Duration: 1},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")

	if err := Save(path, sampleProject()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Name != "demo" || loaded.Output != "out.mp4" {
		t.Errorf("metadata = %q/%q", loaded.Name, loaded.Output)
	}
	tl := loaded.Timeline
	if len(tl.Clips) != 2 || tl.Clips[0].StartTrim != 1 {
		t.Errorf("clips round-tripped wrong: %+v", tl.Clips)
	}
	if len(tl.Transitions) != 1 {
		t.Fatalf("transitions = %d, want 1", len(tl.Transitions))
	}

	d := tl.Transitions[0]
	if d.Type != timeline.TypeFlashWhite || d.Easing != timeline.EaseInOut {
		t.Errorf("descriptor = %+v", d)
	}
	params, ok := d.Params.(timeline.FlashParams)
	if !ok || params.Color != "white" {
		t.Errorf("params = %#v, want flash color white", d.Params)
	}
	if tl.Intro == nil || tl.Intro.Duration != 1 {
		t.Errorf("intro = %+v", tl.Intro)
	}
	if err := tl.Validate(); err != nil {
		t.Errorf("round-tripped timeline invalid: %v", err)
	}
}

func TestLoadBackfillsIDs(t *testing.T) {
	doc := `
name: legacy
clips:
  - source: a.mp4
    duration: 10
sfx:
  - source: boom.wav
    start: 1
    duration: 2
    volume: 1
`
	path := filepath.Join(t.TempDir(), "legacy.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.ID == "" {
		t.Error("project id not backfilled")
	}
	if p.Timeline.Clips[0].ID == "" {
		t.Error("clip id not backfilled")
	}
	if p.Timeline.SFX[0].ID == "" {
		t.Error("track id not backfilled")
	}
	if p.Timeline.Clips[0].ID == p.Timeline.SFX[0].ID {
		t.Error("backfilled ids must be unique")
	}
}

func TestLoadUnknownTransitionTypeFallsBack(t *testing.T) {
	doc := `
name: stale
clips:
  - id: a
    source: a.mp4
    duration: 10
  - id: b
    source: b.mp4
    duration: 5
transitions:
  - from: a
    to: b
    type: hyperspace-warp
    duration: 1
`
	path := filepath.Join(t.TempDir(), "stale.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := p.Timeline.Transitions[0].Type; got != timeline.TypeFade {
		t.Errorf("unknown type loaded as %q, want fade fallback", got)
	}
}

func TestGlitchParamsRoundTrip(t *testing.T) {
	p := sampleProject()
	p.Timeline.Transitions[0] = timeline.Descriptor{
		FromClip: "a", ToClip: "b",
		Type:     timeline.TypeGlitch,
		Duration: 0.8,
		Params:   timeline.GlitchParams{Intensity: 0.7},
	}

	path := filepath.Join(t.TempDir(), "glitch.yaml")
	if err := Save(path, p); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	params, ok := loaded.Timeline.Transitions[0].Params.(timeline.GlitchParams)
	if !ok || params.Intensity != 0.7 {
		t.Errorf("params = %#v, want glitch intensity 0.7", loaded.Timeline.Transitions[0].Params)
	}
}
