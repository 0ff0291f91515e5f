package compositor

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/cutforge/cutforge/internal/timeline"
)

// fragment computes one output pixel for a blend in progress. Programs
// must return the from-pixel at p=0 and the to-pixel at p=1.
type fragment func(x, y int, p float64, s *sampler) color.RGBA

// sampler exposes clamped access to the two source rasters
type sampler struct {
	from, to *image.RGBA
	w, h     int
}

func (s *sampler) src(x, y int) color.RGBA {
	return s.at(s.from, x, y)
}

func (s *sampler) dst(x, y int) color.RGBA {
	return s.at(s.to, x, y)
}

func (s *sampler) at(img *image.RGBA, x, y int) color.RGBA {
	if x < 0 {
		x = 0
	} else if x >= s.w {
		x = s.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= s.h {
		y = s.h - 1
	}
	return img.RGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return color.RGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
		A: uint8(float64(a.A) + t*(float64(b.A)-float64(a.A))),
	}
}

// hash01 is a cheap deterministic per-coordinate noise source
func hash01(x, y int, seed uint32) float64 {
	h := uint32(x)*374761393 + uint32(y)*668265263 + seed*2654435761
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float64(h%10000) / 10000
}

// envelope peaks mid-transition and vanishes at both endpoints, keeping
// distortion programs honest about the endpoint contract
func envelope(p float64) float64 {
	return math.Sin(p * math.Pi)
}

type maskShape int

const (
	shapeCircle maskShape = iota
	shapeDiamond
	shapeBlinds
	shapeChecker
)

type colorGrade int

const (
	gradeNone colorGrade = iota
	gradeDesaturate
	gradeSaturate
	gradeInvert
	gradeSepia
)

// variantConfig tunes one family program for a specific catalog variant.
// Several named variants intentionally share one program with different
// defaults; the mapping is many-to-one by design.
type variantConfig struct {
	dirX, dirY float64
	intensity  float64
	through    color.RGBA // flash / fade-through color
	useThrough bool
	zoomIn     bool
	push       bool
	split      bool
	invert     bool // mask closes instead of opens
	shape      maskShape
	grade      colorGrade
	bands      int
	clockwise  bool
	pulses     int
}

var variantConfigs = map[timeline.Type]variantConfig{
	// fade family
	timeline.TypeFade:           {},
	timeline.TypeDissolve:       {intensity: 0.3},
	timeline.TypeSmoothDissolve: {intensity: 0.15},
	timeline.TypeFilmDissolve:   {intensity: 0.5},
	timeline.TypeFadeBlack:      {useThrough: true, through: color.RGBA{A: 255}},
	timeline.TypeFadeWhite:      {useThrough: true, through: color.RGBA{R: 255, G: 255, B: 255, A: 255}},

	// wipe family
	timeline.TypeWipeLeft:   {dirX: -1},
	timeline.TypeWipeRight:  {dirX: 1},
	timeline.TypeWipeUp:     {dirY: -1},
	timeline.TypeWipeDown:   {dirY: 1},
	timeline.TypeWipeDiagTL: {dirX: -1, dirY: -1},
	timeline.TypeWipeDiagTR: {dirX: 1, dirY: -1},
	timeline.TypeWipeDiagBL: {dirX: -1, dirY: 1},
	timeline.TypeWipeDiagBR: {dirX: 1, dirY: 1},
	timeline.TypeBarnDoor:   {split: true, dirX: 1},
	timeline.TypeClockWipe:  {clockwise: true},

	// slide family
	timeline.TypeSlideLeft:  {dirX: -1},
	timeline.TypeSlideRight: {dirX: 1},
	timeline.TypeSlideUp:    {dirY: -1},
	timeline.TypeSlideDown:  {dirY: 1},
	timeline.TypePushLeft:   {dirX: -1, push: true},
	timeline.TypePushRight:  {dirX: 1, push: true},
	timeline.TypePushUp:     {dirY: -1, push: true},
	timeline.TypePushDown:   {dirY: 1, push: true},
	timeline.TypeCover:      {dirX: -1},
	timeline.TypeReveal:     {dirX: 1, push: true},

	// zoom family
	timeline.TypeZoomIn:    {zoomIn: true, intensity: 1},
	timeline.TypeZoomOut:   {intensity: 1},
	timeline.TypeZoomPunch: {zoomIn: true, intensity: 2},
	timeline.TypeCrashZoom: {zoomIn: true, intensity: 3},
	timeline.TypeZoomBlur:  {zoomIn: true, intensity: 1.5},

	// 3-D family
	timeline.TypeCubeLeft:  {dirX: -1},
	timeline.TypeCubeRight: {dirX: 1},
	timeline.TypeCubeUp:    {dirY: -1},
	timeline.TypeCubeDown:  {dirY: 1},
	timeline.TypeFlipH:     {dirX: 1},
	timeline.TypeFlipV:     {dirY: 1},
	timeline.TypeFold:      {dirY: 1, push: true},
	timeline.TypeUnfold:    {dirY: -1, push: true},
	timeline.TypePageTurn:  {dirX: 1, push: true},

	// glitch family
	timeline.TypeGlitch:      {intensity: 0.5},
	timeline.TypeGlitchHeavy: {intensity: 1},
	timeline.TypeRGBSplit:    {intensity: 0.4},
	timeline.TypeVHS:         {intensity: 0.35},
	timeline.TypeVHSRewind:   {intensity: 0.7},
	timeline.TypeFilmBurn:    {intensity: 0.6, useThrough: true, through: color.RGBA{R: 255, G: 120, B: 0, A: 255}},
	timeline.TypeStaticNoise: {intensity: 0.9},
	timeline.TypeScanlines:   {intensity: 0.3},

	// motion family
	timeline.TypeSwirl:        {intensity: 0.5, clockwise: true},
	timeline.TypeRipple:       {intensity: 0.4},
	timeline.TypeWave:         {intensity: 0.3},
	timeline.TypeShake:        {intensity: 0.5},
	timeline.TypeEarthquake:   {intensity: 1},
	timeline.TypeWhipPanLeft:  {dirX: -1, intensity: 1},
	timeline.TypeWhipPanRight: {dirX: 1, intensity: 1},

	// flash family
	timeline.TypeFlash:      {through: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	timeline.TypeFlashWhite: {through: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	timeline.TypeFlashBlack: {through: color.RGBA{A: 255}},
	timeline.TypeLightLeak:  {through: color.RGBA{R: 255, G: 200, B: 120, A: 255}},
	timeline.TypeLensFlare:  {through: color.RGBA{R: 220, G: 235, B: 255, A: 255}},
	timeline.TypeStrobe:     {through: color.RGBA{R: 255, G: 255, B: 255, A: 255}, pulses: 3},

	// color family
	timeline.TypeColorFade:  {grade: gradeDesaturate},
	timeline.TypeSaturate:   {grade: gradeSaturate},
	timeline.TypeDesaturate: {grade: gradeDesaturate},
	timeline.TypeInvert:     {grade: gradeInvert},
	timeline.TypeSepia:      {grade: gradeSepia},
	timeline.TypeDuotone:    {grade: gradeSepia},

	// mask family
	timeline.TypeCircleOpen:   {shape: shapeCircle},
	timeline.TypeCircleClose:  {shape: shapeCircle, invert: true},
	timeline.TypeDiamond:      {shape: shapeDiamond},
	timeline.TypeHeart:        {shape: shapeCircle},
	timeline.TypeStar:         {shape: shapeDiamond},
	timeline.TypeKeyhole:      {shape: shapeCircle, invert: true},
	timeline.TypeBlinds:       {shape: shapeBlinds, bands: 8},
	timeline.TypeCheckerboard: {shape: shapeChecker, bands: 8},

	// blur family
	timeline.TypeBlur:       {intensity: 1},
	timeline.TypeCrossBlur:  {intensity: 1.5},
	timeline.TypeMotionBlur: {intensity: 1, dirX: 1},
	timeline.TypeDefocus:    {intensity: 2},

	// pixelate family
	timeline.TypePixelate:      {intensity: 1},
	timeline.TypePixelateIn:    {intensity: 1, zoomIn: true},
	timeline.TypePixelateOut:   {intensity: 1},
	timeline.TypeMosaic:        {intensity: 1.5},
	timeline.TypeDigitalBlocks: {intensity: 2},

	// bars family
	timeline.TypeBarsHorizontal: {bands: 6},
	timeline.TypeBarsVertical:   {bands: 6, dirX: 1},
	timeline.TypeLetterbox:      {bands: 2},
	timeline.TypeCurtain:        {bands: 2, dirX: 1},

	// liquid family
	timeline.TypeLiquid:   {intensity: 0.5},
	timeline.TypeMelt:     {intensity: 1},
	timeline.TypeDrip:     {intensity: 0.8},
	timeline.TypeMorph:    {intensity: 0.3},
	timeline.TypeInkBleed: {intensity: 0.6},

	// particle family
	timeline.TypeParticleDissolve: {intensity: 1},
	timeline.TypeShatter:          {intensity: 1.5},
	timeline.TypeBurnAway:         {intensity: 1, useThrough: true, through: color.RGBA{R: 255, G: 100, B: 0, A: 255}},
	timeline.TypeSparkle:          {intensity: 0.7},
	timeline.TypeConfetti:         {intensity: 1.2},

	// spin family
	timeline.TypeSpinClockwise:        {clockwise: true, intensity: 1},
	timeline.TypeSpinCounterclockwise: {intensity: 1},
	timeline.TypeSpinZoom:             {clockwise: true, intensity: 1, zoomIn: true},
	timeline.TypeRotateSoft:           {clockwise: true, intensity: 0.3},

	// special family
	timeline.TypeKaleidoscope: {pulses: 2},
	timeline.TypeDream:        {pulses: 1},
	timeline.TypeHeartbeat:    {pulses: 2},
	timeline.TypeOldFilm:      {pulses: 1},
	timeline.TypeTeleport:     {pulses: 3},
	timeline.TypeRandom:       {pulses: 1},
}

// buildFragment compiles the per-pixel program for a descriptor, applying
// any family-specific payload overrides.
func buildFragment(desc timeline.Descriptor) fragment {
	cfg := variantConfigs[desc.Type]

	switch params := desc.Params.(type) {
	case timeline.FlashParams:
		if c, ok := parseColorName(params.Color); ok {
			cfg.through = c
		}
	case timeline.GlitchParams:
		if params.Intensity > 0 {
			cfg.intensity = params.Intensity
		}
	case timeline.MotionParams:
		if params.Amplitude > 0 {
			cfg.intensity = params.Amplitude
		}
	}

	switch desc.Type.Family() {
	case timeline.FamilyFade:
		return fadeProgram(cfg)
	case timeline.FamilyWipe:
		return wipeProgram(cfg)
	case timeline.FamilySlide:
		return slideProgram(cfg)
	case timeline.FamilyZoom:
		return zoomProgram(cfg)
	case timeline.FamilyThreeD:
		return flipProgram(cfg)
	case timeline.FamilyGlitch:
		return glitchProgram(cfg)
	case timeline.FamilyMotion:
		return distortProgram(cfg)
	case timeline.FamilyFlash:
		return flashProgram(cfg)
	case timeline.FamilyColor:
		return colorProgram(cfg)
	case timeline.FamilyMask:
		return maskProgram(cfg)
	case timeline.FamilyBlur:
		return blurProgram(cfg)
	case timeline.FamilyPixelate:
		return pixelateProgram(cfg)
	case timeline.FamilyBars:
		return barsProgram(cfg)
	case timeline.FamilyLiquid:
		return liquidProgram(cfg)
	case timeline.FamilyParticle:
		return particleProgram(cfg)
	case timeline.FamilySpin:
		return spinProgram(cfg)
	case timeline.FamilySpecial:
		return specialProgram(cfg)
	default:
		return fadeProgram(variantConfig{})
	}
}

func parseColorName(name string) (color.RGBA, bool) {
	switch name {
	case "white":
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}, true
	case "black":
		return color.RGBA{A: 255}, true
	case "red":
		return color.RGBA{R: 255, A: 255}, true
	case "orange":
		return color.RGBA{R: 255, G: 140, A: 255}, true
	case "":
		return color.RGBA{}, false
	}
	if len(name) == 7 && name[0] == '#' {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return color.RGBA{
				R: uint8(v >> 16),
				G: uint8(v >> 8),
				B: uint8(v),
				A: 255,
			}, true
		}
	}
	return color.RGBA{}, false
}

func fadeProgram(cfg variantConfig) fragment {
	if cfg.useThrough {
		through := cfg.through
		return func(x, y int, p float64, s *sampler) color.RGBA {
			if p < 0.5 {
				return lerpColor(s.src(x, y), through, p*2)
			}
			return lerpColor(through, s.dst(x, y), (p-0.5)*2)
		}
	}
	grain := cfg.intensity
	return func(x, y int, p float64, s *sampler) color.RGBA {
		t := p
		if grain > 0 {
			// Dithered dissolve: per-pixel noise staggers the mix
			t += (hash01(x, y, 7) - 0.5) * grain * envelope(p)
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
		}
		return lerpColor(s.src(x, y), s.dst(x, y), t)
	}
}

func wipeProgram(cfg variantConfig) fragment {
	if cfg.clockwise {
		return func(x, y int, p float64, s *sampler) color.RGBA {
			cx, cy := float64(s.w)/2, float64(s.h)/2
			angle := math.Atan2(float64(y)-cy, float64(x)-cx) + math.Pi
			if angle/(2*math.Pi) <= p {
				return s.dst(x, y)
			}
			return s.src(x, y)
		}
	}
	if cfg.split {
		return func(x, y int, p float64, s *sampler) color.RGBA {
			d := math.Abs(float64(x)/float64(s.w)-0.5) * 2
			if d <= p {
				return s.dst(x, y)
			}
			return s.src(x, y)
		}
	}
	dirX, dirY := cfg.dirX, cfg.dirY
	norm := math.Abs(dirX) + math.Abs(dirY)
	return func(x, y int, p float64, s *sampler) color.RGBA {
		u := float64(x) / float64(s.w)
		v := float64(y) / float64(s.h)
		if dirX < 0 {
			u = 1 - u
		}
		if dirY < 0 {
			v = 1 - v
		}
		edge := (math.Abs(dirX)*u + math.Abs(dirY)*v) / norm
		if edge <= p {
			return s.dst(x, y)
		}
		return s.src(x, y)
	}
}

func slideProgram(cfg variantConfig) fragment {
	dirX, dirY := cfg.dirX, cfg.dirY
	push := cfg.push
	return func(x, y int, p float64, s *sampler) color.RGBA {
		// The incoming frame slides in from the direction vector; in push
		// mode the outgoing frame moves out in lockstep.
		offX := int(float64(s.w) * (1 - p) * dirX)
		offY := int(float64(s.h) * (1 - p) * dirY)

		inX, inY := x-offX, y-offY
		if inX >= 0 && inX < s.w && inY >= 0 && inY < s.h {
			return s.dst(inX, inY)
		}
		if push {
			return s.src(x+int(float64(s.w)*p*dirX*-1), y+int(float64(s.h)*p*dirY*-1))
		}
		return s.src(x, y)
	}
}

func zoomProgram(cfg variantConfig) fragment {
	in := cfg.zoomIn
	strength := cfg.intensity
	return func(x, y int, p float64, s *sampler) color.RGBA {
		cx, cy := float64(s.w)/2, float64(s.h)/2
		scale := 1 + strength*p
		if !in {
			scale = 1 / (1 + strength*p)
		}
		sx := int(cx + (float64(x)-cx)/scale)
		sy := int(cy + (float64(y)-cy)/scale)
		return lerpColor(s.src(sx, sy), s.dst(x, y), p)
	}
}

func flipProgram(cfg variantConfig) fragment {
	horizontal := cfg.dirY == 0
	return func(x, y int, p float64, s *sampler) color.RGBA {
		// Squash the outgoing frame to the fold line over the first half,
		// then expand the incoming frame over the second.
		if p < 0.5 {
			squash := 1 - p*2
			if squash <= 0 {
				return s.dst(x, y)
			}
			if horizontal {
				cx := float64(s.w) / 2
				sx := int(cx + (float64(x)-cx)/squash)
				if sx < 0 || sx >= s.w {
					return color.RGBA{A: 255}
				}
				return s.src(sx, y)
			}
			cy := float64(s.h) / 2
			sy := int(cy + (float64(y)-cy)/squash)
			if sy < 0 || sy >= s.h {
				return color.RGBA{A: 255}
			}
			return s.src(x, sy)
		}
		expand := (p - 0.5) * 2
		if expand >= 1 {
			return s.dst(x, y)
		}
		if horizontal {
			cx := float64(s.w) / 2
			sx := int(cx + (float64(x)-cx)/expand)
			if sx < 0 || sx >= s.w {
				return color.RGBA{A: 255}
			}
			return s.dst(sx, y)
		}
		cy := float64(s.h) / 2
		sy := int(cy + (float64(y)-cy)/expand)
		if sy < 0 || sy >= s.h {
			return color.RGBA{A: 255}
		}
		return s.dst(x, sy)
	}
}

func glitchProgram(cfg variantConfig) fragment {
	intensity := cfg.intensity
	return func(x, y int, p float64, s *sampler) color.RGBA {
		amt := envelope(p) * intensity
		// Row-banded displacement driven by deterministic noise
		band := y / 8
		shift := int((hash01(band, 0, uint32(p*60)) - 0.5) * amt * float64(s.w) * 0.3)
		base := lerpColor(s.src(x+shift, y), s.dst(x+shift, y), p)
		if amt > 0.2 {
			// Channel split reads red from a second offset
			split := lerpColor(s.src(x+shift*2, y), s.dst(x+shift*2, y), p)
			base.R = split.R
		}
		return base
	}
}

func distortProgram(cfg variantConfig) fragment {
	intensity := cfg.intensity
	dirX := cfg.dirX
	return func(x, y int, p float64, s *sampler) color.RGBA {
		amt := envelope(p) * intensity
		var dx, dy float64
		if dirX != 0 {
			// Whip pan: large lateral throw at mid-transition
			dx = dirX * amt * float64(s.w) * 0.5
		} else {
			dx = math.Sin(float64(y)/24+p*12) * amt * 20
			dy = math.Cos(float64(x)/24+p*12) * amt * 12
		}
		sx, sy := x+int(dx), y+int(dy)
		return lerpColor(s.src(sx, sy), s.dst(sx, sy), p)
	}
}

func flashProgram(cfg variantConfig) fragment {
	through := cfg.through
	pulses := cfg.pulses
	if pulses == 0 {
		pulses = 1
	}
	return func(x, y int, p float64, s *sampler) color.RGBA {
		base := lerpColor(s.src(x, y), s.dst(x, y), p)
		strength := math.Abs(math.Sin(p * math.Pi * float64(pulses)))
		return lerpColor(base, through, strength)
	}
}

func colorProgram(cfg variantConfig) fragment {
	grade := cfg.grade
	return func(x, y int, p float64, s *sampler) color.RGBA {
		base := lerpColor(s.src(x, y), s.dst(x, y), p)
		amt := envelope(p)
		if amt <= 0 {
			return base
		}
		graded := applyGrade(base, grade)
		return lerpColor(base, graded, amt)
	}
}

func applyGrade(c color.RGBA, grade colorGrade) color.RGBA {
	switch grade {
	case gradeDesaturate:
		l := uint8((uint32(c.R)*299 + uint32(c.G)*587 + uint32(c.B)*114) / 1000)
		return color.RGBA{R: l, G: l, B: l, A: c.A}
	case gradeSaturate:
		boost := func(v uint8) uint8 {
			f := (float64(v)/255-0.5)*1.6 + 0.5
			if f < 0 {
				f = 0
			} else if f > 1 {
				f = 1
			}
			return uint8(f * 255)
		}
		return color.RGBA{R: boost(c.R), G: boost(c.G), B: boost(c.B), A: c.A}
	case gradeInvert:
		return color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A}
	case gradeSepia:
		l := (uint32(c.R)*299 + uint32(c.G)*587 + uint32(c.B)*114) / 1000
		r := l * 112 / 100
		if r > 255 {
			r = 255
		}
		return color.RGBA{R: uint8(r), G: uint8(l * 9 / 10), B: uint8(l * 7 / 10), A: c.A}
	}
	return c
}

func maskProgram(cfg variantConfig) fragment {
	shape := cfg.shape
	inverted := cfg.invert
	bands := cfg.bands
	if bands == 0 {
		bands = 8
	}
	return func(x, y int, p float64, s *sampler) color.RGBA {
		t := p
		if inverted {
			t = 1 - p
		}
		u := float64(x) / float64(s.w)
		v := float64(y) / float64(s.h)
		var inside bool
		switch shape {
		case shapeDiamond:
			inside = math.Abs(u-0.5)+math.Abs(v-0.5) <= t
		case shapeBlinds:
			_, frac := math.Modf(v * float64(bands))
			inside = frac <= t
		case shapeChecker:
			cell := (x/(s.w/bands+1) + y/(s.h/bands+1)) % 2
			threshold := t * 2
			if cell == 1 {
				threshold = t*2 - 1
			}
			inside = threshold >= 1 || hash01(x/(s.w/bands+1), y/(s.h/bands+1), 3) < threshold
		default: // circle
			dx, dy := u-0.5, v-0.5
			inside = math.Sqrt(dx*dx+dy*dy) <= t*0.75
		}
		if inside != inverted {
			return s.dst(x, y)
		}
		return s.src(x, y)
	}
}

func blurProgram(cfg variantConfig) fragment {
	intensity := cfg.intensity
	return func(x, y int, p float64, s *sampler) color.RGBA {
		radius := int(envelope(p) * intensity * 8)
		mix := func(sample func(int, int) color.RGBA) color.RGBA {
			if radius == 0 {
				return sample(x, y)
			}
			var r, g, b, a uint32
			taps := [][2]int{{0, 0}, {-radius, 0}, {radius, 0}, {0, -radius}, {0, radius}}
			for _, t := range taps {
				c := sample(x+t[0], y+t[1])
				r += uint32(c.R)
				g += uint32(c.G)
				b += uint32(c.B)
				a += uint32(c.A)
			}
			n := uint32(len(taps))
			return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: uint8(a / n)}
		}
		return lerpColor(mix(s.src), mix(s.dst), p)
	}
}

func pixelateProgram(cfg variantConfig) fragment {
	intensity := cfg.intensity
	return func(x, y int, p float64, s *sampler) color.RGBA {
		block := 1 + int(envelope(p)*intensity*24)
		bx := (x / block) * block
		by := (y / block) * block
		return lerpColor(s.src(bx, by), s.dst(bx, by), p)
	}
}

func barsProgram(cfg variantConfig) fragment {
	bands := cfg.bands
	if bands == 0 {
		bands = 6
	}
	vertical := cfg.dirX != 0
	return func(x, y int, p float64, s *sampler) color.RGBA {
		var band int
		var frac float64
		if vertical {
			band = x * bands / s.w
			_, frac = math.Modf(float64(x*bands) / float64(s.w))
		} else {
			band = y * bands / s.h
			_, frac = math.Modf(float64(y*bands) / float64(s.h))
		}
		// Alternate bands sweep in opposite directions
		if band%2 == 1 {
			frac = 1 - frac
		}
		if frac <= p {
			return s.dst(x, y)
		}
		return s.src(x, y)
	}
}

func liquidProgram(cfg variantConfig) fragment {
	intensity := cfg.intensity
	return func(x, y int, p float64, s *sampler) color.RGBA {
		// Columns melt downward at noise-staggered speeds
		speed := 0.5 + hash01(x/6, 0, 11)
		drop := int(p * speed * intensity * float64(s.h))
		srcY := y - drop
		if srcY < 0 {
			return s.dst(x, y)
		}
		return lerpColor(s.src(x, srcY), s.dst(x, y), p*p)
	}
}

func particleProgram(cfg variantConfig) fragment {
	intensity := cfg.intensity
	useThrough := cfg.useThrough
	through := cfg.through
	return func(x, y int, p float64, s *sampler) color.RGBA {
		cell := hash01(x/3, y/3, 17)
		if cell <= p {
			return s.dst(x, y)
		}
		// Pixels near their dissolve threshold flare before vanishing
		if useThrough && cell-p < 0.05*intensity {
			return lerpColor(s.src(x, y), through, 0.7)
		}
		return s.src(x, y)
	}
}

func spinProgram(cfg variantConfig) fragment {
	dir := 1.0
	if !cfg.clockwise {
		dir = -1
	}
	intensity := cfg.intensity
	zoom := cfg.zoomIn
	return func(x, y int, p float64, s *sampler) color.RGBA {
		cx, cy := float64(s.w)/2, float64(s.h)/2
		angle := dir * envelope(p) * math.Pi * intensity
		sin, cos := math.Sin(angle), math.Cos(angle)
		dx, dy := float64(x)-cx, float64(y)-cy
		if zoom {
			scale := 1 + envelope(p)
			dx /= scale
			dy /= scale
		}
		sx := int(cx + dx*cos - dy*sin)
		sy := int(cy + dx*sin + dy*cos)
		return lerpColor(s.src(sx, sy), s.dst(sx, sy), p)
	}
}

func specialProgram(cfg variantConfig) fragment {
	pulses := cfg.pulses
	if pulses == 0 {
		pulses = 1
	}
	return func(x, y int, p float64, s *sampler) color.RGBA {
		// Pulsed crossfade: progress advances in surges but endpoints hold
		shaped := p + math.Sin(p*math.Pi*float64(pulses)*2)*0.08*envelope(p)
		if shaped < 0 {
			shaped = 0
		} else if shaped > 1 {
			shaped = 1
		}
		return lerpColor(s.src(x, y), s.dst(x, y), shaped)
	}
}
