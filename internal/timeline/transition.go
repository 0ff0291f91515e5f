package timeline

import "fmt"

// Type names a transition variant. The set is closed: unknown names parse
// to TypeFade rather than failing, so a stale project file can never crash
// the compositor.
type Type string

// Family groups visually similar variants onto one blend algorithm
type Family int

const (
	FamilyCut Family = iota
	FamilyFade
	FamilyWipe
	FamilySlide
	FamilyZoom
	FamilyThreeD
	FamilyGlitch
	FamilyMotion
	FamilyFlash
	FamilyColor
	FamilyMask
	FamilyBlur
	FamilyPixelate
	FamilyBars
	FamilyLiquid
	FamilyParticle
	FamilySpin
	FamilySpecial
)

func (f Family) String() string {
	switch f {
	case FamilyCut:
		return "cut"
	case FamilyFade:
		return "fade"
	case FamilyWipe:
		return "wipe"
	case FamilySlide:
		return "slide"
	case FamilyZoom:
		return "zoom"
	case FamilyThreeD:
		return "3d"
	case FamilyGlitch:
		return "glitch"
	case FamilyMotion:
		return "motion"
	case FamilyFlash:
		return "flash"
	case FamilyColor:
		return "color"
	case FamilyMask:
		return "mask"
	case FamilyBlur:
		return "blur"
	case FamilyPixelate:
		return "pixelate"
	case FamilyBars:
		return "bars"
	case FamilyLiquid:
		return "liquid"
	case FamilyParticle:
		return "particle"
	case FamilySpin:
		return "spin"
	case FamilySpecial:
		return "special"
	}
	return "unknown"
}

const (
	TypeCut Type = "cut"

	TypeFade           Type = "fade"
	TypeFadeBlack      Type = "fade-black"
	TypeFadeWhite      Type = "fade-white"
	TypeDissolve       Type = "dissolve"
	TypeSmoothDissolve Type = "smooth-dissolve"
	TypeFilmDissolve   Type = "film-dissolve"

	TypeWipeLeft      Type = "wipe-left"
	TypeWipeRight     Type = "wipe-right"
	TypeWipeUp        Type = "wipe-up"
	TypeWipeDown      Type = "wipe-down"
	TypeWipeDiagTL    Type = "wipe-diagonal-tl"
	TypeWipeDiagTR    Type = "wipe-diagonal-tr"
	TypeWipeDiagBL    Type = "wipe-diagonal-bl"
	TypeWipeDiagBR    Type = "wipe-diagonal-br"
	TypeBarnDoor      Type = "barn-door"
	TypeClockWipe     Type = "clock-wipe"

	TypeSlideLeft  Type = "slide-left"
	TypeSlideRight Type = "slide-right"
	TypeSlideUp    Type = "slide-up"
	TypeSlideDown  Type = "slide-down"
	TypePushLeft   Type = "push-left"
	TypePushRight  Type = "push-right"
	TypePushUp     Type = "push-up"
	TypePushDown   Type = "push-down"
	TypeCover      Type = "cover"
	TypeReveal     Type = "reveal"

	TypeZoomIn    Type = "zoom-in"
	TypeZoomOut   Type = "zoom-out"
	TypeZoomPunch Type = "zoom-punch"
	TypeCrashZoom Type = "crash-zoom"
	TypeZoomBlur  Type = "zoom-blur"

	TypeCubeLeft  Type = "cube-left"
	TypeCubeRight Type = "cube-right"
	TypeCubeUp    Type = "cube-up"
	TypeCubeDown  Type = "cube-down"
	TypeFlipH     Type = "flip-horizontal"
	TypeFlipV     Type = "flip-vertical"
	TypeFold      Type = "fold"
	TypeUnfold    Type = "unfold"
	TypePageTurn  Type = "page-turn"

	TypeGlitch      Type = "glitch"
	TypeGlitchHeavy Type = "glitch-heavy"
	TypeRGBSplit    Type = "rgb-split"
	TypeVHS         Type = "vhs"
	TypeVHSRewind   Type = "vhs-rewind"
	TypeFilmBurn    Type = "film-burn"
	TypeStaticNoise Type = "static-noise"
	TypeScanlines   Type = "scanlines"

	TypeSwirl        Type = "swirl"
	TypeRipple       Type = "ripple"
	TypeWave         Type = "wave"
	TypeShake        Type = "shake"
	TypeEarthquake   Type = "earthquake"
	TypeWhipPanLeft  Type = "whip-pan-left"
	TypeWhipPanRight Type = "whip-pan-right"

	TypeFlash      Type = "flash"
	TypeFlashWhite Type = "flash-white"
	TypeFlashBlack Type = "flash-black"
	TypeLightLeak  Type = "light-leak"
	TypeLensFlare  Type = "lens-flare"
	TypeStrobe     Type = "strobe"

	TypeColorFade  Type = "color-fade"
	TypeSaturate   Type = "saturate"
	TypeDesaturate Type = "desaturate"
	TypeInvert     Type = "invert"
	TypeSepia      Type = "sepia"
	TypeDuotone    Type = "duotone"

	TypeCircleOpen   Type = "circle-open"
	TypeCircleClose  Type = "circle-close"
	TypeDiamond      Type = "diamond"
	TypeHeart        Type = "heart"
	TypeStar         Type = "star"
	TypeKeyhole      Type = "keyhole"
	TypeBlinds       Type = "blinds"
	TypeCheckerboard Type = "checkerboard"

	TypeBlur       Type = "blur"
	TypeCrossBlur  Type = "cross-blur"
	TypeMotionBlur Type = "motion-blur"
	TypeDefocus    Type = "defocus"

	TypePixelate      Type = "pixelate"
	TypePixelateIn    Type = "pixelate-in"
	TypePixelateOut   Type = "pixelate-out"
	TypeMosaic        Type = "mosaic"
	TypeDigitalBlocks Type = "digital-blocks"

	TypeBarsHorizontal Type = "bars-horizontal"
	TypeBarsVertical   Type = "bars-vertical"
	TypeLetterbox      Type = "letterbox"
	TypeCurtain        Type = "curtain"

	TypeLiquid   Type = "liquid"
	TypeMelt     Type = "melt"
	TypeDrip     Type = "drip"
	TypeMorph    Type = "morph"
	TypeInkBleed Type = "ink-bleed"

	TypeParticleDissolve Type = "particle-dissolve"
	TypeShatter          Type = "shatter"
	TypeBurnAway         Type = "burn-away"
	TypeSparkle          Type = "sparkle"
	TypeConfetti         Type = "confetti"

	TypeSpinClockwise        Type = "spin-clockwise"
	TypeSpinCounterclockwise Type = "spin-counterclockwise"
	TypeSpinZoom             Type = "spin-zoom"
	TypeRotateSoft           Type = "rotate-soft"

	TypeKaleidoscope Type = "kaleidoscope"
	TypeDream        Type = "dream"
	TypeHeartbeat    Type = "heartbeat"
	TypeOldFilm      Type = "old-film"
	TypeTeleport     Type = "teleport"
	TypeRandom       Type = "random"
)

var typeFamilies = map[Type]Family{
	TypeCut: FamilyCut,

	TypeFade: FamilyFade, TypeFadeBlack: FamilyFade, TypeFadeWhite: FamilyFade,
	TypeDissolve: FamilyFade, TypeSmoothDissolve: FamilyFade, TypeFilmDissolve: FamilyFade,

	TypeWipeLeft: FamilyWipe, TypeWipeRight: FamilyWipe, TypeWipeUp: FamilyWipe,
	TypeWipeDown: FamilyWipe, TypeWipeDiagTL: FamilyWipe, TypeWipeDiagTR: FamilyWipe,
	TypeWipeDiagBL: FamilyWipe, TypeWipeDiagBR: FamilyWipe, TypeBarnDoor: FamilyWipe,
	TypeClockWipe: FamilyWipe,

	TypeSlideLeft: FamilySlide, TypeSlideRight: FamilySlide, TypeSlideUp: FamilySlide,
	TypeSlideDown: FamilySlide, TypePushLeft: FamilySlide, TypePushRight: FamilySlide,
	TypePushUp: FamilySlide, TypePushDown: FamilySlide, TypeCover: FamilySlide,
	TypeReveal: FamilySlide,

	TypeZoomIn: FamilyZoom, TypeZoomOut: FamilyZoom, TypeZoomPunch: FamilyZoom,
	TypeCrashZoom: FamilyZoom, TypeZoomBlur: FamilyZoom,

	TypeCubeLeft: FamilyThreeD, TypeCubeRight: FamilyThreeD, TypeCubeUp: FamilyThreeD,
	TypeCubeDown: FamilyThreeD, TypeFlipH: FamilyThreeD, TypeFlipV: FamilyThreeD,
	TypeFold: FamilyThreeD, TypeUnfold: FamilyThreeD, TypePageTurn: FamilyThreeD,

	TypeGlitch: FamilyGlitch, TypeGlitchHeavy: FamilyGlitch, TypeRGBSplit: FamilyGlitch,
	TypeVHS: FamilyGlitch, TypeVHSRewind: FamilyGlitch, TypeFilmBurn: FamilyGlitch,
	TypeStaticNoise: FamilyGlitch, TypeScanlines: FamilyGlitch,

	TypeSwirl: FamilyMotion, TypeRipple: FamilyMotion, TypeWave: FamilyMotion,
	TypeShake: FamilyMotion, TypeEarthquake: FamilyMotion, TypeWhipPanLeft: FamilyMotion,
	TypeWhipPanRight: FamilyMotion,

	TypeFlash: FamilyFlash, TypeFlashWhite: FamilyFlash, TypeFlashBlack: FamilyFlash,
	TypeLightLeak: FamilyFlash, TypeLensFlare: FamilyFlash, TypeStrobe: FamilyFlash,

	TypeColorFade: FamilyColor, TypeSaturate: FamilyColor, TypeDesaturate: FamilyColor,
	TypeInvert: FamilyColor, TypeSepia: FamilyColor, TypeDuotone: FamilyColor,

	TypeCircleOpen: FamilyMask, TypeCircleClose: FamilyMask, TypeDiamond: FamilyMask,
	TypeHeart: FamilyMask, TypeStar: FamilyMask, TypeKeyhole: FamilyMask,
	TypeBlinds: FamilyMask, TypeCheckerboard: FamilyMask,

	TypeBlur: FamilyBlur, TypeCrossBlur: FamilyBlur, TypeMotionBlur: FamilyBlur,
	TypeDefocus: FamilyBlur,

	TypePixelate: FamilyPixelate, TypePixelateIn: FamilyPixelate,
	TypePixelateOut: FamilyPixelate, TypeMosaic: FamilyPixelate,
	TypeDigitalBlocks: FamilyPixelate,

	TypeBarsHorizontal: FamilyBars, TypeBarsVertical: FamilyBars,
	TypeLetterbox: FamilyBars, TypeCurtain: FamilyBars,

	TypeLiquid: FamilyLiquid, TypeMelt: FamilyLiquid, TypeDrip: FamilyLiquid,
	TypeMorph: FamilyLiquid, TypeInkBleed: FamilyLiquid,

	TypeParticleDissolve: FamilyParticle, TypeShatter: FamilyParticle,
	TypeBurnAway: FamilyParticle, TypeSparkle: FamilyParticle,
	TypeConfetti: FamilyParticle,

	TypeSpinClockwise: FamilySpin, TypeSpinCounterclockwise: FamilySpin,
	TypeSpinZoom: FamilySpin, TypeRotateSoft: FamilySpin,

	TypeKaleidoscope: FamilySpecial, TypeDream: FamilySpecial,
	TypeHeartbeat: FamilySpecial, TypeOldFilm: FamilySpecial,
	TypeTeleport: FamilySpecial, TypeRandom: FamilySpecial,
}

// Family returns the blend family for the type. Unknown types report
// FamilyFade, matching ParseType's safe default.
func (t Type) Family() Family {
	if f, ok := typeFamilies[t]; ok {
		return f
	}
	return FamilyFade
}

// Known reports whether the type belongs to the closed catalog
func (t Type) Known() bool {
	_, ok := typeFamilies[t]
	return ok
}

// Types returns the full catalog (for listing and tests). The slice is a
// copy; order is unspecified.
func Types() []Type {
	out := make([]Type, 0, len(typeFamilies))
	for t := range typeFamilies {
		out = append(out, t)
	}
	return out
}

// ParseType maps a name to a catalog type. Unknown names fall back to a
// basic fade rather than failing.
func ParseType(name string) Type {
	t := Type(name)
	if t.Known() {
		return t
	}
	return TypeFade
}

// Easing names a progress-shaping curve
type Easing string

const (
	EaseLinear   Easing = "linear"
	EaseIn       Easing = "ease-in"
	EaseOut      Easing = "ease-out"
	EaseInOut    Easing = "ease-in-out"
	EaseCubic    Easing = "cubic"
	EaseCubicOut Easing = "cubic-out"
)

// Params carries family-specific transition payload. Implementations are
// small structs so invalid field combinations cannot be expressed.
type Params interface {
	ParamsFamily() Family
}

// FlashParams configures flash-family transitions
type FlashParams struct {
	Color string // e.g. "white", "black", "#ff4400"
}

func (FlashParams) ParamsFamily() Family { return FamilyFlash }

// GlitchParams configures glitch-family intensity
type GlitchParams struct {
	Intensity float64 // 0..1, 0 means family default
}

func (GlitchParams) ParamsFamily() Family { return FamilyGlitch }

// MotionParams configures motion-family amplitude
type MotionParams struct {
	Amplitude float64 // 0..1, 0 means family default
}

func (MotionParams) ParamsFamily() Family { return FamilyMotion }

// Descriptor names a transition between two timeline-adjacent clips
type Descriptor struct {
	FromClip string
	ToClip   string
	Type     Type
	Duration float64
	Easing   Easing
	Params   Params
}

func (d Descriptor) validateParams() error {
	if d.Params == nil {
		return nil
	}
	if got, want := d.Params.ParamsFamily(), d.Type.Family(); got != want {
		return fmt.Errorf("params family %s does not match transition family %s", got, want)
	}
	return nil
}

// IsCut reports whether the descriptor switches immediately with no
// blended frames. Zero-duration descriptors behave as cuts.
func (d Descriptor) IsCut() bool {
	return d.Type.Family() == FamilyCut || d.Duration <= 0
}
