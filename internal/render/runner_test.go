package render

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewRunnerMissingBinary(t *testing.T) {
	if _, err := NewRunner(zerolog.Nop(), "cutforge-no-such-encoder", 0); err == nil {
		t.Fatal("expected error for missing encoder binary")
	}
}

func TestCancelIdempotent(t *testing.T) {
	r := &Runner{logger: zerolog.Nop()}

	// Safe before any render has started.
	r.Cancel()
	r.Cancel()

	if r.Running() {
		t.Fatal("runner should not report running")
	}

	// Safe after a render's context has already been released.
	_, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.Cancel()
	r.Cancel()
}

func TestFinishReleasesRenderContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{logger: zerolog.Nop(), running: true, cancel: cancel}

	r.finish()
	if ctx.Err() == nil {
		t.Fatal("render context should be released after completion")
	}
	if r.Running() {
		t.Fatal("runner should not report running after finish")
	}

	// Cancel after completion stays a no-op.
	r.Cancel()
	r.Cancel()
}

func TestBusyGuard(t *testing.T) {
	r := &Runner{logger: zerolog.Nop(), running: true}

	_, err := r.Start(context.Background(), &Plan{}, "out.mp4")
	if err != ErrRenderBusy {
		t.Fatalf("expected ErrRenderBusy, got %v", err)
	}
}
