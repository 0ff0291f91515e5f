// Package engine is the facade the CLI and GUI talk to: it wires the
// compiler, the encoder runner, the preview scheduler and the effect-audio
// synchronizer over one configuration.
package engine

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/compositor"
	"github.com/cutforge/cutforge/internal/config"
	"github.com/cutforge/cutforge/internal/media"
	"github.com/cutforge/cutforge/internal/preview"
	"github.com/cutforge/cutforge/internal/render"
	"github.com/cutforge/cutforge/internal/timeline"
)

// Engine coordinates the offline render path and the online preview path
// for one open project.
type Engine struct {
	logger   zerolog.Logger
	cfg      *config.Config
	resolver media.Resolver
	compiler *render.Compiler
	runner   *render.Runner

	mu        sync.Mutex
	tl        *timeline.Timeline
	scheduler *preview.Scheduler
	driver    *preview.Driver
	sfx       *preview.Synchronizer
	blendMode compositor.Mode
	lastTick  time.Time
	stopTick  chan struct{}
}

// New builds an engine from configuration. The resolver turns timeline
// media references into readable paths.
func New(logger zerolog.Logger, cfg *config.Config, resolver media.Resolver) (*Engine, error) {
	runner, err := render.NewRunner(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, err
	}

	compiler := render.NewCompiler(resolver, render.SubtitleDefaults{
		Font:     cfg.Subtitles.FontName,
		Size:     cfg.Subtitles.FontSize,
		Color:    cfg.Subtitles.FontColor,
		BoxColor: cfg.Subtitles.BoxColor,
		Position: cfg.Subtitles.Position,
	})

	return &Engine{
		logger:   logger.With().Str("component", "engine").Logger(),
		cfg:      cfg,
		resolver: resolver,
		compiler: compiler,
		runner:   runner,
	}, nil
}

// Compile validates the timeline and builds its render plan without
// starting an encode.
func (e *Engine) Compile(tl *timeline.Timeline) (*render.Plan, error) {
	return e.compiler.Compile(tl)
}

// Render compiles the timeline and starts the encoder. The returned
// channel carries progress then exactly one terminal event. A second
// render while one is in flight fails with render.ErrRenderBusy.
func (e *Engine) Render(ctx context.Context, tl *timeline.Timeline, output string) (<-chan render.Event, error) {
	plan, err := e.compiler.Compile(tl)
	if err != nil {
		return nil, err
	}
	e.logger.Info().
		Str("output", output).
		Float64("duration", plan.TotalDuration).
		Int("inputs", len(plan.Inputs)).
		Msg("starting render")
	return e.runner.Start(ctx, plan, output)
}

// CancelRender terminates an in-flight render; safe to call at any time
func (e *Engine) CancelRender() {
	e.runner.Cancel()
}

// Rendering reports whether an encode is in flight
func (e *Engine) Rendering() bool {
	return e.runner.Running()
}

// StartPreview opens the preview path on the timeline, positioned at the
// given global playhead. Validation failures block preview start entirely.
func (e *Engine) StartPreview(tl *timeline.Timeline, playhead float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler != nil {
		return fmt.Errorf("preview already open")
	}

	scheduler, err := preview.NewScheduler(e.logger, tl)
	if err != nil {
		return err
	}

	blender, mode := compositor.New(compositor.Options{
		Logger:        e.logger,
		ForceFallback: e.cfg.Preview.DisableShader,
		OnComplete: func() {
			e.logger.Debug().Msg("transition blend complete")
		},
	})

	driver := preview.NewDriver(e.logger, e.resolver, blender, mode,
		preview.NewClockHandle(), preview.NewClockHandle())

	// Load the first clip before any tick runs
	first := tl.Clips[0]
	path, ok := e.resolver.Resolve(first.Source)
	if !ok {
		blender.Release()
		return &timeline.ValidationError{
			Field:  "clips[0]",
			Reason: fmt.Sprintf("media reference %q cannot be resolved", first.Source),
		}
	}
	if err := driver.Active().Load(path); err != nil {
		blender.Release()
		return err
	}

	tolerance := float64(e.cfg.Preview.ReseekToleranceMillis) / 1000
	e.tl = tl
	e.scheduler = scheduler
	e.driver = driver
	e.sfx = preview.NewSynchronizer(e.logger, e.resolver, tolerance)
	e.blendMode = mode
	e.lastTick = time.Now()
	e.stopTick = make(chan struct{})

	go e.tickLoop(e.stopTick)

	driver.Apply(tl, scheduler.Seek(playhead))
	e.logger.Info().
		Str("compositor", string(mode)).
		Float64("playhead", playhead).
		Msg("preview opened")
	return nil
}

// tickLoop drives the scheduler at the configured rate. All scheduler
// mutation happens under the engine lock; the loop is the only writer
// while the preview is open apart from explicit Seek/Play/Pause calls.
func (e *Engine) tickLoop(stop chan struct{}) {
	interval := time.Duration(e.cfg.Preview.TickMillis) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return
	}

	now := time.Now()
	elapsed := now.Sub(e.lastTick).Seconds()
	e.lastTick = now

	active := e.driver.Active()
	actions := e.scheduler.Tick(preview.TickInput{
		Elapsed:     elapsed,
		Position:    active.Position(),
		HasPosition: !e.scheduler.Transitioning(),
		FrameReady:  active.Ready(),
	})
	e.driver.Apply(e.tl, actions)
	e.sfx.Sync(e.scheduler.Playhead(), e.scheduler.Playing(), e.tl.SFX)
}

// Seek scrubs the global playhead, canceling any in-flight transition
func (e *Engine) Seek(globalTime float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return
	}
	e.driver.Apply(e.tl, e.scheduler.Seek(globalTime))
}

// Play resumes playback
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return
	}
	e.driver.Apply(e.tl, e.scheduler.Tick(preview.TickInput{Play: true}))
	e.lastTick = time.Now()
}

// Pause halts playback and every effect-audio handle
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return
	}
	e.driver.Apply(e.tl, e.scheduler.Tick(preview.TickInput{Pause: true}))
	e.sfx.PauseAll()
}

// Playhead returns the current global playhead time
func (e *Engine) Playhead() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return 0
	}
	return e.scheduler.Playhead()
}

// Playing reports preview play state
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler != nil && e.scheduler.Playing()
}

// Frame returns the frame the preview should display right now: the
// composited blend mid-transition, the active clip's frame otherwise.
// Nil when no preview is open.
func (e *Engine) Frame() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.driver == nil {
		return nil
	}
	return e.driver.Frame()
}

// PreviewMode reports which compositor path the open preview selected
func (e *Engine) PreviewMode() compositor.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blendMode
}

// StopPreview tears down the preview path and releases every handle
func (e *Engine) StopPreview() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return
	}
	close(e.stopTick)
	e.driver.Release()
	e.sfx.Release()
	e.scheduler = nil
	e.driver = nil
	e.sfx = nil
	e.tl = nil
	e.logger.Info().Msg("preview closed")
}
