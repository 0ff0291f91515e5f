package preview

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/timeline"
)

// ActionKind names one scheduler output
type ActionKind int

const (
	// ActionSeekActive repositions the active handle to Seconds
	ActionSeekActive ActionKind = iota
	// ActionPreloadNext loads clip Clip into the secondary handle seeked
	// to Seconds
	ActionPreloadNext
	// ActionBeginTransition starts blending under Desc
	ActionBeginTransition
	// ActionBlendFrame requests one blended frame at Progress
	ActionBlendFrame
	// ActionCancelTransition abandons an in-flight transition
	ActionCancelTransition
	// ActionPromoteNext swaps the secondary handle into the active slot
	ActionPromoteNext
	// ActionResumePlayback starts the active handle
	ActionResumePlayback
	// ActionPausePlayback pauses both handles
	ActionPausePlayback
)

func (k ActionKind) String() string {
	switch k {
	case ActionSeekActive:
		return "seek-active"
	case ActionPreloadNext:
		return "preload-next"
	case ActionBeginTransition:
		return "begin-transition"
	case ActionBlendFrame:
		return "blend-frame"
	case ActionCancelTransition:
		return "cancel-transition"
	case ActionPromoteNext:
		return "promote-next"
	case ActionResumePlayback:
		return "resume-playback"
	case ActionPausePlayback:
		return "pause-playback"
	}
	return "unknown"
}

// Action is one instruction for the playback driver
type Action struct {
	Kind     ActionKind
	Clip     int
	Seconds  float64
	Progress float64
	Desc     timeline.Descriptor
}

// TickInput carries everything one scheduling decision needs: the active
// handle's position, elapsed wall time, any requested seek, and play/pause
// intent. Keeping the inputs explicit makes the scheduler testable without
// a media backend.
type TickInput struct {
	// Elapsed is wall seconds since the previous tick; it advances the
	// playhead while a transition is animating (the active handle has
	// stopped at its boundary by then).
	Elapsed float64
	// Position is the active handle's clip-local position
	Position    float64
	HasPosition bool
	// Seek requests an absolute global playhead move
	Seek    float64
	HasSeek bool
	// FrameReady reports the active handle decoded a usable frame since
	// the last clip switch
	FrameReady bool
	Play       bool
	Pause      bool
}

type schedulerPhase int

const (
	phaseIdle schedulerPhase = iota
	phaseTransitioning
)

// transitionState is populated only while a transition is animating.
// Transitions are permitted only from the idle phase, so a boundary poll
// firing mid-transition can never start a second one.
type transitionState struct {
	phase     schedulerPhase
	from, to  int
	startedAt float64
	desc      timeline.Descriptor
}

// Scheduler maps the global playhead onto the ordered clip list and emits
// driver actions per tick. It holds no handles and does no I/O.
type Scheduler struct {
	logger zerolog.Logger
	tl     *timeline.Timeline

	clipIndex int
	playhead  float64
	playing   bool
	// autoPlay is a one-shot flag: set when a clip switch happens while
	// playing, consumed on the first tick after the new handle is ready.
	autoPlay bool
	state    transitionState
}

// NewScheduler validates the timeline and positions the playhead at zero
func NewScheduler(logger zerolog.Logger, tl *timeline.Timeline) (*Scheduler, error) {
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		logger: logger.With().Str("component", "scheduler").Logger(),
		tl:     tl,
	}, nil
}

// Locate resolves a global playhead time to a clip index and clip-local
// time. Past the end of the composition it pins to the last clip at its
// trimmed end.
func (s *Scheduler) Locate(globalTime float64) (int, float64) {
	if globalTime < 0 {
		globalTime = 0
	}
	accumulated := 0.0
	for i, clip := range s.tl.Clips {
		eff := clip.EffectiveDuration()
		if globalTime < accumulated+eff || i == len(s.tl.Clips)-1 {
			local := globalTime - accumulated + clip.StartTrim
			end := clip.Duration - clip.EndTrim
			if local > end {
				local = end
			}
			return i, local
		}
		accumulated += eff
	}
	return 0, 0
}

// ToGlobalTime is the exact inverse of Locate for in-bounds inputs
func (s *Scheduler) ToGlobalTime(clipIndex int, localTime float64) float64 {
	accumulated := 0.0
	for i := 0; i < clipIndex && i < len(s.tl.Clips); i++ {
		accumulated += s.tl.Clips[i].EffectiveDuration()
	}
	return accumulated + localTime - s.tl.Clips[clipIndex].StartTrim
}

// ClipIndex returns the currently active clip
func (s *Scheduler) ClipIndex() int { return s.clipIndex }

// Playhead returns the current global playhead time
func (s *Scheduler) Playhead() float64 { return s.playhead }

// Playing reports play intent
func (s *Scheduler) Playing() bool { return s.playing }

// Transitioning reports whether a transition is animating
func (s *Scheduler) Transitioning() bool { return s.state.phase == phaseTransitioning }

// Tick advances the scheduler one step and returns the actions the driver
// must apply, in order.
func (s *Scheduler) Tick(in TickInput) []Action {
	var actions []Action

	if in.Pause {
		s.playing = false
		actions = append(actions, Action{Kind: ActionPausePlayback})
	}
	if in.Play {
		s.playing = true
		actions = append(actions, Action{Kind: ActionResumePlayback})
	}
	if in.HasSeek {
		return append(actions, s.seekTo(in.Seek)...)
	}

	if s.autoPlay && in.FrameReady && s.state.phase == phaseIdle {
		s.autoPlay = false
		if s.playing {
			actions = append(actions, Action{Kind: ActionResumePlayback})
		}
	}

	if !s.playing {
		return actions
	}

	switch s.state.phase {
	case phaseTransitioning:
		s.playhead += in.Elapsed
		progress := 1.0
		if s.state.desc.Duration > 0 {
			progress = (s.playhead - s.state.startedAt) / s.state.desc.Duration
		}
		if progress >= 1 {
			actions = append(actions, s.completeTransition()...)
		} else {
			actions = append(actions, Action{Kind: ActionBlendFrame, Progress: progress})
		}

	default:
		if !in.HasPosition {
			s.playhead += in.Elapsed
			return actions
		}
		clip := s.tl.Clips[s.clipIndex]
		s.playhead = s.ToGlobalTime(s.clipIndex, in.Position)
		if in.Position >= clip.Duration-clip.EndTrim {
			actions = append(actions, s.reachBoundary()...)
		}
	}
	return actions
}

// Seek is a convenience wrapper for an externally requested scrub
func (s *Scheduler) Seek(globalTime float64) []Action {
	return s.Tick(TickInput{Seek: globalTime, HasSeek: true})
}

// seekTo repositions the playhead. Any in-flight transition is canceled
// and the guard cleared before the move, so two transition timers can
// never run into the same boundary.
func (s *Scheduler) seekTo(globalTime float64) []Action {
	var actions []Action
	if s.state.phase == phaseTransitioning {
		s.logger.Debug().
			Str("transition", string(s.state.desc.Type)).
			Msg("seek canceled in-flight transition")
		s.state = transitionState{}
		actions = append(actions, Action{Kind: ActionCancelTransition})
	}

	index, local := s.Locate(globalTime)
	s.playhead = s.ToGlobalTime(index, local)

	if index != s.clipIndex {
		s.clipIndex = index
		s.autoPlay = s.playing
		actions = append(actions,
			Action{Kind: ActionPreloadNext, Clip: index, Seconds: local},
			Action{Kind: ActionPromoteNext},
		)
	} else {
		actions = append(actions, Action{Kind: ActionSeekActive, Seconds: local})
	}
	return actions
}

// reachBoundary fires when the active clip plays to its trimmed end.
// Only reachable from the idle phase.
func (s *Scheduler) reachBoundary() []Action {
	next := s.clipIndex + 1
	if next >= len(s.tl.Clips) {
		s.playing = false
		s.logger.Debug().Msg("composition end reached")
		return []Action{{Kind: ActionPausePlayback}}
	}

	nextClip := s.tl.Clips[next]
	desc := s.tl.TransitionBetween(s.tl.Clips[s.clipIndex].ID, nextClip.ID)

	if desc == nil || desc.IsCut() {
		// No blended frames: preload, switch, resume in one step
		s.clipIndex = next
		s.autoPlay = s.playing
		s.playhead = s.ToGlobalTime(next, nextClip.StartTrim)
		return []Action{
			{Kind: ActionPreloadNext, Clip: next, Seconds: nextClip.StartTrim},
			{Kind: ActionPromoteNext},
		}
	}

	s.state = transitionState{
		phase:     phaseTransitioning,
		from:      s.clipIndex,
		to:        next,
		startedAt: s.playhead,
		desc:      *desc,
	}
	s.logger.Debug().
		Str("transition", string(desc.Type)).
		Float64("duration", desc.Duration).
		Str("pair", fmt.Sprintf("%d->%d", s.clipIndex, next)).
		Msg("transition triggered")

	return []Action{
		{Kind: ActionPreloadNext, Clip: next, Seconds: nextClip.StartTrim},
		{Kind: ActionBeginTransition, Desc: *desc},
	}
}

// completeTransition promotes the preloaded handle and returns to idle
func (s *Scheduler) completeTransition() []Action {
	to := s.state.to
	s.state = transitionState{}
	s.clipIndex = to
	s.autoPlay = s.playing
	return []Action{
		{Kind: ActionBlendFrame, Progress: 1},
		{Kind: ActionPromoteNext},
	}
}
