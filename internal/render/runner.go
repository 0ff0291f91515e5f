package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is one update on the render event stream. Progress and terminal
// errors share this surface so callers have a single channel to watch.
type Event struct {
	Progress *ProgressEvent
	Err      error
	Done     bool
}

// Runner executes the encoder subprocess for compiled plans. A runner
// allows one render in flight at a time; concurrent Start calls are
// rejected with ErrRenderBusy.
type Runner struct {
	logger     zerolog.Logger
	ffmpegPath string
	threads    int
	killWait   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewRunner creates a runner. binaryPath defaults to "ffmpeg" on PATH.
func NewRunner(logger zerolog.Logger, binaryPath string, threads int) (*Runner, error) {
	if binaryPath == "" {
		binaryPath = "ffmpeg"
	}
	resolved, err := exec.LookPath(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	return &Runner{
		logger:     logger.With().Str("component", "render").Logger(),
		ffmpegPath: resolved,
		threads:    threads,
		killWait:   5 * time.Second,
	}, nil
}

// Start launches the encoder for the plan and returns the event stream.
// The channel carries progress events while encoding, then exactly one
// terminal event (Done or Err), and is closed.
func (r *Runner) Start(ctx context.Context, plan *Plan, output string) (<-chan Event, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRenderBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.running = true
	r.cancel = cancel
	r.mu.Unlock()

	events := make(chan Event, 128)

	args := []string{"-y", "-hide_banner", "-loglevel", "info"}
	if r.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", r.threads))
	}
	args = append(args, plan.CommandArgs(output)...)

	r.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("starting encoder")

	cmd := exec.CommandContext(runCtx, r.ffmpegPath, args...)
	cmd.WaitDelay = r.killWait

	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.finish()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		r.finish()
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	monitor := NewMonitor(plan.TotalDuration, func(event ProgressEvent) {
		// Progress is best-effort; a slow consumer loses samples, never
		// the terminal event.
		select {
		case events <- Event{Progress: &event}:
		default:
		}
	})

	go func() {
		defer close(events)
		defer r.finish()

		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			monitor.ConsumeLine(scanner.Text())
		}

		err := cmd.Wait()
		switch {
		case err == nil:
			monitor.Finish()
			r.logger.Info().Str("output", output).Msg("render complete")
			events <- Event{Done: true}
		case runCtx.Err() != nil:
			r.logger.Info().Msg("render canceled")
			events <- Event{Err: runCtx.Err()}
		default:
			exitCode := -1
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			}
			classified := classifyExit(exitCode, monitor.Tail())
			r.logger.Error().Err(classified).Msg("render failed")
			events <- Event{Err: classified}
		}
	}()

	return events, nil
}

// Cancel terminates an in-flight render. It is idempotent and safe to call
// after natural completion.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Running reports whether a render is currently in flight
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// finish clears the in-flight state and releases the render context so the
// registration on the caller's ctx does not outlive the render.
func (r *Runner) finish() {
	r.mu.Lock()
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
