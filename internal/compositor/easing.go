package compositor

import "github.com/cutforge/cutforge/internal/timeline"

// Ease shapes a raw progress value with the descriptor's named curve.
// Every curve is monotonic and pins 0 to 0 and 1 to 1, so easing never
// breaks the blend endpoint contract.
func Ease(name timeline.Easing, p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	switch name {
	case timeline.EaseIn:
		return p * p
	case timeline.EaseOut:
		return 1 - (1-p)*(1-p)
	case timeline.EaseInOut:
		if p < 0.5 {
			return 2 * p * p
		}
		return 1 - 2*(1-p)*(1-p)
	case timeline.EaseCubic:
		return p * p * p
	case timeline.EaseCubicOut:
		q := 1 - p
		return 1 - q*q*q
	default:
		return p
	}
}
