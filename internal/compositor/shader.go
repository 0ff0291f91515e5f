package compositor

import (
	"image"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/timeline"
)

// shaderEngine evaluates a per-pixel fragment program over the two source
// rasters. The compiled program and the output texture are cached across
// Blend calls and recreated only when the transition type changes, so a
// scrub across one transition allocates once.
type shaderEngine struct {
	logger     zerolog.Logger
	onComplete func()

	desc     timeline.Descriptor
	program  fragment
	progType timeline.Type
	texture  *image.RGBA
	fired    bool
}

func newShaderEngine(opts Options) *shaderEngine {
	return &shaderEngine{
		logger:     opts.Logger.With().Str("component", "compositor").Logger(),
		onComplete: opts.OnComplete,
	}
}

func (e *shaderEngine) Begin(desc timeline.Descriptor) {
	e.desc = desc
	e.fired = false
	if e.program == nil || e.progType != desc.Type {
		e.program = buildFragment(desc)
		e.progType = desc.Type
		e.logger.Debug().
			Str("transition", string(desc.Type)).
			Str("family", desc.Type.Family().String()).
			Msg("compiled fragment program")
	}
}

func (e *shaderEngine) Blend(from, to *image.RGBA, progress float64) *image.RGBA {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	if progress >= 1 && !e.fired {
		e.fired = true
		if e.onComplete != nil {
			e.onComplete()
		}
	}

	if e.desc.IsCut() {
		if progress >= 1 {
			return to
		}
		return from
	}

	p := Ease(e.desc.Easing, progress)
	if p <= 0 {
		return from
	}
	if p >= 1 {
		return to
	}

	bounds := from.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if e.texture == nil || e.texture.Bounds().Dx() != w || e.texture.Bounds().Dy() != h {
		e.texture = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	if e.program == nil {
		e.program = buildFragment(e.desc)
		e.progType = e.desc.Type
	}

	s := &sampler{from: from, to: to, w: w, h: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			e.texture.SetRGBA(x, y, e.program(x, y, p, s))
		}
	}
	return e.texture
}

func (e *shaderEngine) Release() {
	e.program = nil
	e.progType = ""
	e.texture = nil
}
