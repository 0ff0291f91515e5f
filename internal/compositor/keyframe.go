package compositor

import (
	"image"
	"image/color"

	"github.com/cutforge/cutforge/internal/timeline"
)

// Phase names one half of a keyframe transition
type Phase int

const (
	PhaseOut Phase = iota // outgoing clip animates off
	PhaseIn               // incoming clip animates on
)

// PhaseAt splits blend progress into the two keyframe phases and the
// position within the active phase. The out phase owns the first half of
// the transition window, the in phase the second.
func PhaseAt(progress float64) (Phase, float64) {
	if progress < 0.5 {
		return PhaseOut, progress * 2
	}
	return PhaseIn, (progress - 0.5) * 2
}

// keyframeBlender approximates a transition without fragment programs: the
// outgoing frame dims to black over the first half, the incoming frame
// brightens from black over the second. It ignores the transition variant;
// only the cut family keeps its immediate-switch semantics.
type keyframeBlender struct {
	onComplete func()

	desc    timeline.Descriptor
	texture *image.RGBA
	fired   bool
}

func newKeyframeBlender(opts Options) *keyframeBlender {
	return &keyframeBlender{onComplete: opts.OnComplete}
}

func (k *keyframeBlender) Begin(desc timeline.Descriptor) {
	k.desc = desc
	k.fired = false
}

func (k *keyframeBlender) Blend(from, to *image.RGBA, progress float64) *image.RGBA {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	if progress >= 1 && !k.fired {
		k.fired = true
		if k.onComplete != nil {
			k.onComplete()
		}
	}

	if k.desc.IsCut() {
		if progress >= 1 {
			return to
		}
		return from
	}

	p := Ease(k.desc.Easing, progress)
	if p <= 0 {
		return from
	}
	if p >= 1 {
		return to
	}

	phase, local := PhaseAt(p)
	var src *image.RGBA
	var brightness float64
	if phase == PhaseOut {
		src = from
		brightness = 1 - local
	} else {
		src = to
		brightness = local
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if k.texture == nil || k.texture.Bounds().Dx() != w || k.texture.Bounds().Dy() != h {
		k.texture = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			k.texture.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(c.R) * brightness),
				G: uint8(float64(c.G) * brightness),
				B: uint8(float64(c.B) * brightness),
				A: c.A,
			})
		}
	}
	return k.texture
}

func (k *keyframeBlender) Release() {
	k.texture = nil
}
