// Package compositor blends two video frames according to a transition
// descriptor and a progress value in [0,1].
//
// Two interchangeable paths exist: a shader engine evaluating per-pixel
// fragment programs on CPU rasters (the CPU core is kept separate from any
// GPU backend, in the tiny-skia tradition), and a keyframe fallback that
// animates the outgoing clip off and the incoming clip on in two timed
// phases. The fallback is plain raster arithmetic and is always available;
// cut-family descriptors switch immediately under either path.
package compositor

import (
	"errors"
	"image"
	"os"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/timeline"
)

// ErrUnsupported indicates the shader path is unavailable in this
// environment. It is never fatal: callers fall back transparently and the
// condition is only logged.
var ErrUnsupported = errors.New("shader compositor unsupported in this environment")

// Blender produces blended frames for one transition at a time.
// Begin resets per-transition state; Blend must satisfy: progress 0 yields
// the from-frame, progress 1 yields the to-frame. Completion is signaled
// exactly once per transition when progress reaches 1.
type Blender interface {
	Begin(desc timeline.Descriptor)
	Blend(from, to *image.RGBA, progress float64) *image.RGBA
	Release()
}

// Mode names the active compositor path
type Mode string

const (
	ModeShader   Mode = "shader"
	ModeKeyframe Mode = "keyframe"
)

// Options configures blender construction
type Options struct {
	Logger zerolog.Logger
	// ForceFallback skips the shader path (config preview.disable_shader)
	ForceFallback bool
	// OnComplete fires exactly once per transition when progress reaches 1
	OnComplete func()
}

// shaderProbe reports whether the shader engine can run. Swappable in
// tests to simulate unsupported environments.
var shaderProbe = func() bool {
	return os.Getenv("CUTFORGE_NO_SHADER") == ""
}

// New selects the best available blender: shader when supported, keyframe
// otherwise. The degradation is observable in the log, never a silent
// no-op.
func New(opts Options) (Blender, Mode) {
	if !opts.ForceFallback && shaderProbe() {
		return newShaderEngine(opts), ModeShader
	}

	opts.Logger.Warn().
		Err(ErrUnsupported).
		Msg("using keyframe fallback compositor")
	return newKeyframeBlender(opts), ModeKeyframe
}
