// Package preview drives live playback of a composition: a tick-driven
// scheduler maps the global playhead to clip-local positions, triggers
// transitions at clip boundaries, and keeps effect audio aligned.
package preview

import (
	"fmt"
	"hash/fnv"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/compositor"
	"github.com/cutforge/cutforge/internal/media"
	"github.com/cutforge/cutforge/internal/timeline"
)

// PlaybackHandle is one video playback surface. The scheduler owns exactly
// two: the active clip and the preloaded next clip. Nothing else mutates
// them.
type PlaybackHandle interface {
	Load(source string) error
	SeekTo(seconds float64)
	Position() float64
	Play()
	Pause()
	Playing() bool
	// Ready reports whether a usable frame has been decoded since Load
	Ready() bool
	// Frame returns the current video frame, or nil before Load
	Frame() *image.RGBA
	Release()
}

// AudioHandle is one effect-audio playback channel with a fixed volume
type AudioHandle interface {
	Load(source string) error
	SeekTo(seconds float64)
	Position() float64
	Play()
	Pause()
	Playing() bool
	SetVolume(volume float64)
	Release()
}

// clockHandle is a wall-clock backed handle: position advances in real
// time while playing. It backs both video and audio playback when no
// platform media element is wired in, and doubles as the test double.
type clockHandle struct {
	mu sync.Mutex

	source   string
	loaded   bool
	playing  bool
	volume   float64
	position float64 // position at last state change
	resumed  time.Time
	now      func() time.Time
	frame    *image.RGBA
}

// NewClockHandle creates a handle whose position tracks wall time
func NewClockHandle() *clockHandle {
	return &clockHandle{volume: 1, now: time.Now}
}

func (h *clockHandle) Load(source string) error {
	if source == "" {
		return fmt.Errorf("empty media source")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.source = source
	h.loaded = true
	h.playing = false
	h.position = 0
	h.frame = nil
	return nil
}

func (h *clockHandle) SeekTo(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	h.position = seconds
	h.resumed = h.now()
}

func (h *clockHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.playing {
		return h.position
	}
	return h.position + h.now().Sub(h.resumed).Seconds()
}

func (h *clockHandle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.playing || !h.loaded {
		return
	}
	h.playing = true
	h.resumed = h.now()
}

func (h *clockHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.playing {
		return
	}
	h.position += h.now().Sub(h.resumed).Seconds()
	h.playing = false
}

func (h *clockHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *clockHandle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

// Frame returns a solid raster colored per source. Without a platform
// decoder there are no real frames, but a stable stand-in per clip keeps
// the blend path visible end to end.
func (h *clockHandle) Frame() *image.RGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded {
		return nil
	}
	if h.frame == nil {
		h.frame = placeholderFrame(h.source)
	}
	return h.frame
}

func placeholderFrame(source string) *image.RGBA {
	sum := fnv.New32a()
	sum.Write([]byte(source))
	v := sum.Sum32()
	r, g, b := uint8(v), uint8(v>>8), uint8(v>>16)

	img := image.NewRGBA(image.Rect(0, 0, 320, 180))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 0xff
	}
	return img
}

func (h *clockHandle) SetVolume(volume float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = volume
}

func (h *clockHandle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = false
	h.playing = false
	h.position = 0
	h.frame = nil
}

// Driver owns the two playback handles and the blender, and applies the
// scheduler's actions to them. The scheduler itself stays a pure state
// machine so it can be tested without any media backend.
type Driver struct {
	logger   zerolog.Logger
	resolver media.Resolver
	blender  compositor.Blender
	mode     compositor.Mode

	active PlaybackHandle
	next   PlaybackHandle

	progress      float64
	transitioning bool
	blended       *image.RGBA
}

// NewDriver wires a driver over two handles and a blender
func NewDriver(logger zerolog.Logger, resolver media.Resolver, blender compositor.Blender, mode compositor.Mode, active, next PlaybackHandle) *Driver {
	return &Driver{
		logger:   logger.With().Str("component", "preview").Logger(),
		resolver: resolver,
		blender:  blender,
		mode:     mode,
		active:   active,
		next:     next,
	}
}

// Apply executes the scheduler's actions in order against the owned
// handles. Errors are per-action and do not stop later actions; preview
// degrades rather than halting.
func (d *Driver) Apply(tl *timeline.Timeline, actions []Action) {
	for _, action := range actions {
		if err := d.apply(tl, action); err != nil {
			d.logger.Warn().
				Err(err).
				Str("action", action.Kind.String()).
				Msg("preview action failed, continuing")
		}
	}
}

func (d *Driver) apply(tl *timeline.Timeline, action Action) error {
	switch action.Kind {
	case ActionSeekActive:
		d.active.SeekTo(action.Seconds)

	case ActionPreloadNext:
		if action.Clip < 0 || action.Clip >= len(tl.Clips) {
			return fmt.Errorf("preload clip index %d out of range", action.Clip)
		}
		clip := tl.Clips[action.Clip]
		path, ok := d.resolver.Resolve(clip.Source)
		if !ok {
			return fmt.Errorf("clip %s: media %q not found", clip.ID, clip.Source)
		}
		if err := d.next.Load(path); err != nil {
			return fmt.Errorf("clip %s: %w", clip.ID, err)
		}
		d.next.SeekTo(action.Seconds)

	case ActionBeginTransition:
		d.blender.Begin(action.Desc)
		d.transitioning = true
		d.progress = 0
		d.blended = nil
		d.next.Play()
		d.logger.Debug().
			Str("transition", string(action.Desc.Type)).
			Str("mode", string(d.mode)).
			Msg("transition started")

	case ActionBlendFrame:
		d.progress = action.Progress
		from, to := d.active.Frame(), d.next.Frame()
		if from != nil && to != nil {
			d.blended = d.blender.Blend(from, to, action.Progress)
		}

	case ActionCancelTransition:
		d.transitioning = false
		d.progress = 0
		d.blended = nil
		d.next.Pause()

	case ActionPromoteNext:
		d.active.Pause()
		d.active, d.next = d.next, d.active
		d.transitioning = false
		d.progress = 0
		d.blended = nil

	case ActionResumePlayback:
		d.active.Play()

	case ActionPausePlayback:
		d.active.Pause()
		d.next.Pause()
	}
	return nil
}

// Active returns the handle currently fronting playback
func (d *Driver) Active() PlaybackHandle { return d.active }

// Progress returns the current blend progress while a transition is
// animating, for the frame render loop.
func (d *Driver) Progress() (float64, bool) {
	return d.progress, d.transitioning
}

// Frame returns the frame to display: the composited blend while a
// transition is animating, the active clip's frame otherwise.
func (d *Driver) Frame() *image.RGBA {
	if d.transitioning && d.blended != nil {
		return d.blended
	}
	return d.active.Frame()
}

// Release tears down both handles and the blender
func (d *Driver) Release() {
	d.active.Release()
	d.next.Release()
	d.blender.Release()
}
