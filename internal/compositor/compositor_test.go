package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/timeline"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func framesEqual(a, b *image.RGBA) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

var (
	red  = color.RGBA{R: 200, A: 255}
	blue = color.RGBA{B: 200, A: 255}
)

func TestNewSelectsShaderWhenSupported(t *testing.T) {
	orig := shaderProbe
	shaderProbe = func() bool { return true }
	defer func() { shaderProbe = orig }()

	b, mode := New(Options{Logger: zerolog.Nop()})
	defer b.Release()
	if mode != ModeShader {
		t.Errorf("mode = %q, want shader", mode)
	}
}

func TestGlitchFallsBackWithoutError(t *testing.T) {
	// Unsupported environment plus an active glitch descriptor must select
	// the two-phase fallback, not fail
	orig := shaderProbe
	shaderProbe = func() bool { return false }
	defer func() { shaderProbe = orig }()

	b, mode := New(Options{Logger: zerolog.Nop()})
	defer b.Release()
	if mode != ModeKeyframe {
		t.Fatalf("mode = %q, want keyframe", mode)
	}

	b.Begin(timeline.Descriptor{Type: timeline.TypeGlitch, Duration: 1})
	from := solidFrame(8, 8, red)
	to := solidFrame(8, 8, blue)

	if out := b.Blend(from, to, 0); !framesEqual(out, from) {
		t.Error("fallback at progress 0 should show the outgoing frame")
	}
	if out := b.Blend(from, to, 1); !framesEqual(out, to) {
		t.Error("fallback at progress 1 should show the incoming frame")
	}
}

func TestForceFallbackOption(t *testing.T) {
	orig := shaderProbe
	shaderProbe = func() bool { return true }
	defer func() { shaderProbe = orig }()

	_, mode := New(Options{Logger: zerolog.Nop(), ForceFallback: true})
	if mode != ModeKeyframe {
		t.Errorf("mode = %q, want keyframe when fallback forced", mode)
	}
}

func TestFallbackAnimatesInsteadOfCutting(t *testing.T) {
	// With the shader path unavailable, selection must land on the
	// keyframe blender, which still animates mid-transition frames.
	orig := shaderProbe
	shaderProbe = func() bool { return false }
	defer func() { shaderProbe = orig }()

	b, mode := New(Options{Logger: zerolog.Nop(), ForceFallback: true})
	defer b.Release()
	if mode != ModeKeyframe {
		t.Fatalf("mode = %q, want keyframe", mode)
	}

	b.Begin(timeline.Descriptor{Type: timeline.TypeFade, Duration: 1})
	from := solidFrame(4, 4, red)
	to := solidFrame(4, 4, blue)
	if out := b.Blend(from, to, 0.25); framesEqual(out, from) || framesEqual(out, to) {
		t.Error("fallback mid-transition frame should animate, not cut")
	}
}

func TestShaderEndpointContract(t *testing.T) {
	// One representative type per family: progress 0 must reproduce the
	// from-frame exactly, progress 1 the to-frame
	types := []timeline.Type{
		timeline.TypeFade,
		timeline.TypeFadeBlack,
		timeline.TypeWipeLeft,
		timeline.TypeClockWipe,
		timeline.TypeSlideRight,
		timeline.TypePushUp,
		timeline.TypeZoomIn,
		timeline.TypeFlipH,
		timeline.TypeGlitchHeavy,
		timeline.TypeSwirl,
		timeline.TypeFlashWhite,
		timeline.TypeSepia,
		timeline.TypeCircleOpen,
		timeline.TypeBlinds,
		timeline.TypeBlur,
		timeline.TypePixelate,
		timeline.TypeBarsHorizontal,
		timeline.TypeMelt,
		timeline.TypeParticleDissolve,
		timeline.TypeSpinClockwise,
		timeline.TypeHeartbeat,
	}

	engine := newShaderEngine(Options{Logger: zerolog.Nop()})
	defer engine.Release()

	from := solidFrame(16, 12, red)
	to := solidFrame(16, 12, blue)

	for _, typ := range types {
		engine.Begin(timeline.Descriptor{Type: typ, Duration: 1})
		if out := engine.Blend(from, to, 0); !framesEqual(out, from) {
			t.Errorf("%s: progress 0 does not equal from-frame", typ)
		}
		if out := engine.Blend(from, to, 1); !framesEqual(out, to) {
			t.Errorf("%s: progress 1 does not equal to-frame", typ)
		}
	}
}

func TestShaderMidTransitionDiffers(t *testing.T) {
	engine := newShaderEngine(Options{Logger: zerolog.Nop()})
	defer engine.Release()

	engine.Begin(timeline.Descriptor{Type: timeline.TypeWipeRight, Duration: 1})
	from := solidFrame(16, 12, red)
	to := solidFrame(16, 12, blue)

	out := engine.Blend(from, to, 0.5)
	if framesEqual(out, from) || framesEqual(out, to) {
		t.Error("mid-transition frame should blend both sources")
	}
}

func TestShaderTextureReuse(t *testing.T) {
	engine := newShaderEngine(Options{Logger: zerolog.Nop()})
	defer engine.Release()

	engine.Begin(timeline.Descriptor{Type: timeline.TypeFade, Duration: 1})
	from := solidFrame(16, 12, red)
	to := solidFrame(16, 12, blue)

	first := engine.Blend(from, to, 0.3)
	second := engine.Blend(from, to, 0.6)
	if first != second {
		t.Error("output texture should be reused across blends of one transition")
	}

	// Re-beginning with the same type keeps the compiled program
	engine.Begin(timeline.Descriptor{Type: timeline.TypeFade, Duration: 2})
	if engine.progType != timeline.TypeFade {
		t.Error("program cache key should track the transition type")
	}
	engine.Begin(timeline.Descriptor{Type: timeline.TypeWipeLeft, Duration: 1})
	if engine.progType != timeline.TypeWipeLeft {
		t.Error("changing the transition type should recompile the program")
	}
}

func TestShaderCutDescriptor(t *testing.T) {
	engine := newShaderEngine(Options{Logger: zerolog.Nop()})
	defer engine.Release()

	engine.Begin(timeline.Descriptor{Type: timeline.TypeCut, Duration: 1})
	from := solidFrame(8, 8, red)
	to := solidFrame(8, 8, blue)

	if out := engine.Blend(from, to, 0.99); !framesEqual(out, from) {
		t.Error("cut below progress 1 should show the outgoing frame")
	}
	if out := engine.Blend(from, to, 1); !framesEqual(out, to) {
		t.Error("cut at progress 1 should show the incoming frame")
	}
}

func TestCompletionFiresOnce(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func(opts Options) Blender
	}{
		{"shader", func(o Options) Blender { return newShaderEngine(o) }},
		{"keyframe", func(o Options) Blender { return newKeyframeBlender(o) }},
	} {
		fired := 0
		b := tc.build(Options{Logger: zerolog.Nop(), OnComplete: func() { fired++ }})
		b.Begin(timeline.Descriptor{Type: timeline.TypeFade, Duration: 1})

		from := solidFrame(4, 4, red)
		to := solidFrame(4, 4, blue)
		b.Blend(from, to, 0.5)
		b.Blend(from, to, 1)
		b.Blend(from, to, 1)

		if fired != 1 {
			t.Errorf("%s: completion fired %d times, want exactly once", tc.name, fired)
		}

		// A new transition re-arms the callback
		b.Begin(timeline.Descriptor{Type: timeline.TypeFade, Duration: 1})
		b.Blend(from, to, 1)
		if fired != 2 {
			t.Errorf("%s: completion not re-armed by Begin", tc.name)
		}
		b.Release()
	}
}

func TestKeyframePhases(t *testing.T) {
	if phase, local := PhaseAt(0.25); phase != PhaseOut || local != 0.5 {
		t.Errorf("PhaseAt(0.25) = %v/%v", phase, local)
	}
	if phase, local := PhaseAt(0.75); phase != PhaseIn || local != 0.5 {
		t.Errorf("PhaseAt(0.75) = %v/%v", phase, local)
	}

	kf := newKeyframeBlender(Options{Logger: zerolog.Nop()})
	defer kf.Release()
	kf.Begin(timeline.Descriptor{Type: timeline.TypeFade, Duration: 2, Easing: timeline.EaseLinear})

	from := solidFrame(4, 4, red)
	to := solidFrame(4, 4, blue)

	// Out phase samples the outgoing frame, in phase the incoming one
	outFrame := kf.Blend(from, to, 0.25)
	if c := outFrame.RGBAAt(0, 0); c.R == 0 || c.B != 0 {
		t.Errorf("out phase pixel = %v, want dimmed outgoing red", c)
	}
	inFrame := kf.Blend(from, to, 0.75)
	if c := inFrame.RGBAAt(0, 0); c.B == 0 || c.R != 0 {
		t.Errorf("in phase pixel = %v, want brightening incoming blue", c)
	}
}

func TestEaseCurves(t *testing.T) {
	curves := []timeline.Easing{
		timeline.EaseLinear,
		timeline.EaseIn,
		timeline.EaseOut,
		timeline.EaseInOut,
		timeline.EaseCubic,
		timeline.EaseCubicOut,
	}

	for _, curve := range curves {
		if got := Ease(curve, 0); got != 0 {
			t.Errorf("%s: Ease(0) = %v, want 0", curve, got)
		}
		if got := Ease(curve, 1); got != 1 {
			t.Errorf("%s: Ease(1) = %v, want 1", curve, got)
		}

		prev := 0.0
		for p := 0.05; p < 1; p += 0.05 {
			v := Ease(curve, p)
			if v < prev {
				t.Errorf("%s: not monotonic at p=%.2f (%v < %v)", curve, p, v, prev)
				break
			}
			prev = v
		}
	}
}
