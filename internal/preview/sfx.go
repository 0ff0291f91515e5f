package preview

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/cutforge/cutforge/internal/media"
	"github.com/cutforge/cutforge/internal/timeline"
)

// DefaultReseekTolerance is the drift epsilon under which a handle is left
// alone rather than reseeked, to avoid thrashing.
const DefaultReseekTolerance = 0.25

// Synchronizer keeps one audio handle per effect track aligned with the
// global playhead. Handles are created lazily on first use and released
// when their track disappears from the composition.
type Synchronizer struct {
	logger    zerolog.Logger
	resolver  media.Resolver
	tolerance float64
	newHandle func() AudioHandle

	handles map[string]AudioHandle
}

// NewSynchronizer creates a synchronizer. tolerance <= 0 selects the
// default reseek epsilon.
func NewSynchronizer(logger zerolog.Logger, resolver media.Resolver, tolerance float64) *Synchronizer {
	if tolerance <= 0 {
		tolerance = DefaultReseekTolerance
	}
	return &Synchronizer{
		logger:    logger.With().Str("component", "sfx").Logger(),
		resolver:  resolver,
		tolerance: tolerance,
		newHandle: func() AudioHandle { return NewClockHandle() },
		handles:   make(map[string]AudioHandle),
	}
}

// Sync aligns every track handle with the playhead. Called once per
// scheduler tick while the preview is open. A track is audible only inside
// its [start, start+duration) window; outside it the handle is paused.
// Missing media degrades to a skipped track, never a halted preview.
func (s *Synchronizer) Sync(globalTime float64, playing bool, tracks []timeline.SFXTrack) {
	seen := make(map[string]bool, len(tracks))

	for _, track := range tracks {
		seen[track.ID] = true
		handle, err := s.handleFor(track)
		if err != nil {
			s.logger.Warn().Err(err).Str("track", track.ID).Msg("skipping effect track")
			continue
		}

		within := globalTime >= track.Start && globalTime < track.Start+track.Duration
		if !within || !playing {
			handle.Pause()
			continue
		}

		local := globalTime - track.Start
		if math.Abs(handle.Position()-local) > s.tolerance {
			handle.SeekTo(local)
		}
		if !handle.Playing() {
			handle.Play()
		}
	}

	// Tracks removed from the composition release their handles
	for id, handle := range s.handles {
		if !seen[id] {
			handle.Pause()
			handle.Release()
			delete(s.handles, id)
			s.logger.Debug().Str("track", id).Msg("released effect track handle")
		}
	}
}

func (s *Synchronizer) handleFor(track timeline.SFXTrack) (AudioHandle, error) {
	if handle, ok := s.handles[track.ID]; ok {
		return handle, nil
	}
	path, ok := s.resolver.Resolve(track.Source)
	if !ok {
		return nil, fmt.Errorf("media %q not found", track.Source)
	}
	handle := s.newHandle()
	if err := handle.Load(path); err != nil {
		return nil, err
	}
	handle.SetVolume(track.Volume)
	s.handles[track.ID] = handle
	return handle, nil
}

// PauseAll pauses every track handle; used when the global playhead pauses
func (s *Synchronizer) PauseAll() {
	for _, handle := range s.handles {
		handle.Pause()
	}
}

// Release stops and frees every handle
func (s *Synchronizer) Release() {
	for id, handle := range s.handles {
		handle.Pause()
		handle.Release()
		delete(s.handles, id)
	}
}
