package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRenderBusy is returned when a render is requested while another one
// is already in flight for the same runner.
var ErrRenderBusy = errors.New("a render is already in progress")

// EncodeError reports a nonzero encoder exit. Diagnostic carries the
// trailing subprocess output verbatim; the render is never retried
// automatically.
type EncodeError struct {
	ExitCode   int
	Diagnostic string
}

func (e *EncodeError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("encoder exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("encoder exited with code %d: %s", e.ExitCode, e.Diagnostic)
}

// SourceMediaError reports that the source media lacks a stream the plan
// expected, distinguished from a generic encode failure by known
// diagnostic substrings.
type SourceMediaError struct {
	Stream     string
	Diagnostic string
}

func (e *SourceMediaError) Error() string {
	return fmt.Sprintf("source media has no usable %s stream; re-export the source with %s or remove the dependent tracks", e.Stream, e.Stream)
}

// ffmpeg phrases that indicate a missing input stream rather than an
// encoding failure
var missingStreamMarkers = []struct {
	marker string
	stream string
}{
	{"matches no streams", "audio"},
	{"does not contain any stream", "audio"},
	{"Cannot find a matching stream", "audio"},
	{"Invalid audio stream", "audio"},
	{"Invalid video stream", "video"},
}

// classifyExit turns a nonzero encoder exit into the most specific error
// the diagnostic text supports.
func classifyExit(exitCode int, diagnostic string) error {
	for _, m := range missingStreamMarkers {
		if strings.Contains(diagnostic, m.marker) {
			return &SourceMediaError{Stream: m.stream, Diagnostic: diagnostic}
		}
	}
	return &EncodeError{ExitCode: exitCode, Diagnostic: diagnostic}
}
