package preview

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/timeline"
)

func twoClipFade() *timeline.Timeline {
	return &timeline.Timeline{
		Clips: []timeline.Clip{
			{ID: "a", Source: "a.mp4", Duration: 10},
			{ID: "b", Source: "b.mp4", Duration: 8},
		},
		Transitions: []timeline.Descriptor{
			{FromClip: "a", ToClip: "b", Type: timeline.TypeFade, Duration: 1},
		},
	}
}

func newTestScheduler(t *testing.T, tl *timeline.Timeline) *Scheduler {
	t.Helper()
	s, err := NewScheduler(zerolog.Nop(), tl)
	if err != nil {
		t.Fatalf("scheduler creation failed: %v", err)
	}
	return s
}

func hasAction(actions []Action, kind ActionKind) bool {
	for _, a := range actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func TestLocateRoundTrip(t *testing.T) {
	tl := &timeline.Timeline{
		Clips: []timeline.Clip{
			{ID: "a", Source: "a.mp4", Duration: 10, StartTrim: 1, EndTrim: 2},
			{ID: "b", Source: "b.mp4", Duration: 8, StartTrim: 0.5},
			{ID: "c", Source: "c.mp4", Duration: 6},
		},
	}
	s := newTestScheduler(t, tl)

	for i, clip := range tl.Clips {
		for _, frac := range []float64{0, 0.25, 0.5, 0.99} {
			local := clip.StartTrim + frac*clip.EffectiveDuration()
			global := s.ToGlobalTime(i, local)
			gotIndex, gotLocal := s.Locate(global)
			if gotIndex != i || math.Abs(gotLocal-local) > 1e-9 {
				t.Errorf("Locate(ToGlobalTime(%d, %v)) = (%d, %v)", i, local, gotIndex, gotLocal)
			}
		}
	}
}

func TestLocatePastEndPinsLastClip(t *testing.T) {
	tl := twoClipFade()
	tl.Clips[1].EndTrim = 1
	s := newTestScheduler(t, tl)

	index, local := s.Locate(1000)
	if index != 1 {
		t.Errorf("index = %d, want last clip", index)
	}
	if want := tl.Clips[1].Duration - tl.Clips[1].EndTrim; local != want {
		t.Errorf("local = %v, want trimmed end %v", local, want)
	}
}

func TestLocateClipBoundary(t *testing.T) {
	// 10s + 8s with a fade: total 18, global 10.0 is the start of clip 1
	s := newTestScheduler(t, twoClipFade())

	if total := s.tl.TotalDuration(); total != 18 {
		t.Fatalf("total duration = %v, want 18", total)
	}
	index, local := s.Locate(10.0)
	if index != 1 || local != 0 {
		t.Errorf("Locate(10.0) = (%d, %v), want (1, 0)", index, local)
	}
}

func TestPlayThroughTriggersTransition(t *testing.T) {
	s := newTestScheduler(t, twoClipFade())

	s.Tick(TickInput{Play: true})
	actions := s.Tick(TickInput{Position: 9.5, HasPosition: true})
	if s.Transitioning() {
		t.Fatal("transition must not trigger before the boundary")
	}
	if hasAction(actions, ActionBeginTransition) {
		t.Fatal("unexpected transition actions before boundary")
	}

	actions = s.Tick(TickInput{Position: 10, HasPosition: true})
	if !s.Transitioning() {
		t.Fatal("transition should trigger at the clip boundary")
	}
	if !hasAction(actions, ActionPreloadNext) || !hasAction(actions, ActionBeginTransition) {
		t.Errorf("boundary actions = %v", actions)
	}

	// A second boundary poll while animating must not re-trigger
	actions = s.Tick(TickInput{Elapsed: 0.1})
	if hasAction(actions, ActionBeginTransition) {
		t.Error("transition re-triggered while one is in flight")
	}
	if !hasAction(actions, ActionBlendFrame) {
		t.Errorf("expected a blend frame, got %v", actions)
	}
}

func TestTransitionCompletesAndPromotes(t *testing.T) {
	s := newTestScheduler(t, twoClipFade())

	s.Tick(TickInput{Play: true})
	s.Tick(TickInput{Position: 10, HasPosition: true})

	var promoted bool
	for i := 0; i < 30 && !promoted; i++ {
		actions := s.Tick(TickInput{Elapsed: 0.1})
		promoted = hasAction(actions, ActionPromoteNext)
	}
	if !promoted {
		t.Fatal("transition never completed")
	}
	if s.Transitioning() {
		t.Error("guard still set after completion")
	}
	if s.ClipIndex() != 1 {
		t.Errorf("clip index = %d, want 1", s.ClipIndex())
	}
}

func TestSeekCancelsInFlightTransition(t *testing.T) {
	s := newTestScheduler(t, twoClipFade())

	s.Tick(TickInput{Play: true})
	s.Tick(TickInput{Position: 10, HasPosition: true})
	if !s.Transitioning() {
		t.Fatal("setup: transition should be in flight")
	}

	actions := s.Seek(2.0)
	if s.Transitioning() {
		t.Error("seek must clear the transition guard")
	}
	if !hasAction(actions, ActionCancelTransition) {
		t.Errorf("seek actions missing cancel: %v", actions)
	}
	if s.ClipIndex() != 0 {
		t.Errorf("clip index = %d, want 0 after seeking back", s.ClipIndex())
	}
	if s.Playhead() != 2.0 {
		t.Errorf("playhead = %v, want 2.0", s.Playhead())
	}
}

func TestSeekAcrossClipsSwitchesHandles(t *testing.T) {
	s := newTestScheduler(t, twoClipFade())

	actions := s.Seek(12.0)
	if !hasAction(actions, ActionPreloadNext) || !hasAction(actions, ActionPromoteNext) {
		t.Errorf("cross-clip seek actions = %v", actions)
	}
	if s.ClipIndex() != 1 {
		t.Errorf("clip index = %d, want 1", s.ClipIndex())
	}

	actions = s.Seek(12.5)
	if hasAction(actions, ActionPromoteNext) {
		t.Error("same-clip seek should only reposition the active handle")
	}
	if !hasAction(actions, ActionSeekActive) {
		t.Errorf("same-clip seek actions = %v", actions)
	}
}

func TestCutSwitchesImmediately(t *testing.T) {
	tl := twoClipFade()
	tl.Transitions[0].Type = timeline.TypeCut
	s := newTestScheduler(t, tl)

	s.Tick(TickInput{Play: true})
	actions := s.Tick(TickInput{Position: 10, HasPosition: true})

	if s.Transitioning() {
		t.Error("cut must not enter the transitioning phase")
	}
	if hasAction(actions, ActionBeginTransition) {
		t.Error("cut produced blended frames")
	}
	if !hasAction(actions, ActionPromoteNext) {
		t.Errorf("cut actions = %v", actions)
	}
	if s.ClipIndex() != 1 {
		t.Errorf("clip index = %d, want 1", s.ClipIndex())
	}
}

func TestNoDescriptorMeansCut(t *testing.T) {
	tl := twoClipFade()
	tl.Transitions = nil
	s := newTestScheduler(t, tl)

	s.Tick(TickInput{Play: true})
	actions := s.Tick(TickInput{Position: 10, HasPosition: true})
	if !hasAction(actions, ActionPromoteNext) || hasAction(actions, ActionBeginTransition) {
		t.Errorf("missing descriptor should switch immediately, got %v", actions)
	}
}

func TestAutoPlayIsOneShot(t *testing.T) {
	s := newTestScheduler(t, twoClipFade())

	s.Tick(TickInput{Play: true})
	s.Tick(TickInput{Position: 10, HasPosition: true})
	for i := 0; i < 30 && s.Transitioning(); i++ {
		s.Tick(TickInput{Elapsed: 0.1})
	}

	// First ready tick after the switch consumes the flag
	actions := s.Tick(TickInput{Position: 0, HasPosition: true, FrameReady: true})
	if !hasAction(actions, ActionResumePlayback) {
		t.Fatalf("expected playback resume after switch, got %v", actions)
	}

	actions = s.Tick(TickInput{Position: 0.1, HasPosition: true, FrameReady: true})
	if hasAction(actions, ActionResumePlayback) {
		t.Error("auto-play flag fired twice")
	}
}

func TestEndOfCompositionPauses(t *testing.T) {
	s := newTestScheduler(t, twoClipFade())

	s.Seek(17.0)
	s.Tick(TickInput{Play: true})
	actions := s.Tick(TickInput{Position: 8, HasPosition: true})

	if s.Playing() {
		t.Error("playback should stop at the composition end")
	}
	if !hasAction(actions, ActionPausePlayback) {
		t.Errorf("end-of-timeline actions = %v", actions)
	}
}

func TestPausedSchedulerEmitsNothing(t *testing.T) {
	s := newTestScheduler(t, twoClipFade())

	actions := s.Tick(TickInput{Position: 10, HasPosition: true})
	if len(actions) != 0 {
		t.Errorf("paused tick produced actions: %v", actions)
	}
	if s.Transitioning() {
		t.Error("paused scheduler must not trigger transitions")
	}
}
