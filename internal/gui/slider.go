package gui

import (
	"fyne.io/fyne/v2/widget"
)

// playheadSlider separates user scrubs from follow-loop updates.
// Slider.SetValue re-enters OnChanged synchronously, so a plain SetValue
// from the follow loop would read back as a seek and cancel any in-flight
// transition.
type playheadSlider struct {
	*widget.Slider
	following bool
}

func newPlayheadSlider(total float64, onScrub func(float64)) *playheadSlider {
	ps := &playheadSlider{Slider: widget.NewSlider(0, total)}
	ps.Step = 0.05
	ps.OnChanged = func(val float64) {
		if ps.following {
			return
		}
		onScrub(val)
	}
	return ps
}

// Follow moves the slider to track engine playback without seeking
func (ps *playheadSlider) Follow(val float64) {
	ps.following = true
	ps.SetValue(val)
	ps.following = false
}
