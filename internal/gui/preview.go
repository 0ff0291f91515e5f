// Package gui is the fyne preview window over an open engine
package gui

import (
	"fmt"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/cutforge/cutforge/internal/engine"
	"github.com/cutforge/cutforge/internal/timeline"
	"github.com/cutforge/cutforge/pkg/util"
)

// RunPreview opens the preview window for a timeline, positioned at the
// start playhead, and blocks until the window closes. The engine's preview
// must not already be open.
func RunPreview(eng *engine.Engine, tl *timeline.Timeline, width, height int, start float64) error {
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 360
	}

	if err := eng.StartPreview(tl, start); err != nil {
		return err
	}
	defer eng.StopPreview()

	total := tl.TotalDuration()

	myApp := app.NewWithID("cutforge")
	w := myApp.NewWindow("cutforge preview")
	w.Resize(fyne.NewSize(float32(width), float32(height)+120))

	// Video surface, painted from the engine's composited frames
	blank := image.NewRGBA(image.Rect(0, 0, width, height))
	raster := canvas.NewImageFromImage(blank)
	raster.FillMode = canvas.ImageFillContain
	raster.SetMinSize(fyne.NewSize(float32(width), float32(height)))

	playheadLabel := widget.NewLabel(fmt.Sprintf("0.00s / %s", util.FormatSeconds(total)))
	modeLabel := widget.NewLabel(fmt.Sprintf("compositor: %s", eng.PreviewMode()))

	var scrubbing bool
	slider := newPlayheadSlider(total, func(val float64) {
		scrubbing = true
		eng.Seek(val)
		playheadLabel.SetText(fmt.Sprintf("%.2fs / %s", val, util.FormatSeconds(total)))
	})
	slider.OnChangeEnded = func(val float64) {
		scrubbing = false
	}

	playButton := widget.NewButton("Play", nil)
	playButton.OnTapped = func() {
		if eng.Playing() {
			eng.Pause()
			playButton.SetText("Play")
		} else {
			eng.Play()
			playButton.SetText("Pause")
		}
	}

	// Follow the playhead while the engine drives it
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if scrubbing {
					continue
				}
				playhead := eng.Playhead()
				frame := eng.Frame()
				fyne.Do(func() {
					slider.Follow(playhead)
					playheadLabel.SetText(fmt.Sprintf("%.2fs / %s", playhead, util.FormatSeconds(total)))
					if frame != nil {
						raster.Image = frame
						raster.Refresh()
					}
					if !eng.Playing() {
						playButton.SetText("Play")
					}
				})
			}
		}
	}()
	w.SetOnClosed(func() { close(stop) })

	w.SetContent(
		container.NewVBox(
			raster,
			slider.Slider,
			container.NewHBox(playButton, playheadLabel, modeLabel),
		),
	)

	w.ShowAndRun()
	return nil
}
