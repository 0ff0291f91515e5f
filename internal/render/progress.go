package render

import (
	"regexp"
	"strconv"
	"strings"
)

// ProgressEvent is one structured update parsed from the encoder's status
// stream
type ProgressEvent struct {
	Percent    float64
	ElapsedSec float64
	TotalSec   float64
	Speed      float64 // encode speed multiplier, 0 when absent
}

const tailLines = 24

var (
	timeMarkerRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
	speedRe      = regexp.MustCompile(`speed=\s*([\d.]+)x`)
)

// Monitor consumes the encoder's line-oriented status output and emits one
// ProgressEvent per recognized time marker. Unparseable lines are ignored;
// parsing is best-effort and never fatal. The monitor also keeps a ring of
// trailing lines for diagnostics on failure.
type Monitor struct {
	total float64
	emit  func(ProgressEvent)
	tail  []string
	last  ProgressEvent
}

// NewMonitor creates a monitor for a render whose media duration was
// probed ahead of time.
func NewMonitor(totalSeconds float64, emit func(ProgressEvent)) *Monitor {
	return &Monitor{total: totalSeconds, emit: emit}
}

// ConsumeLine feeds one subprocess output line into the monitor
func (m *Monitor) ConsumeLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed != "" {
		m.tail = append(m.tail, trimmed)
		if len(m.tail) > tailLines {
			m.tail = m.tail[1:]
		}
	}

	match := timeMarkerRe.FindStringSubmatch(line)
	if match == nil {
		return
	}

	hours, _ := strconv.ParseFloat(match[1], 64)
	minutes, _ := strconv.ParseFloat(match[2], 64)
	seconds, _ := strconv.ParseFloat(match[3], 64)
	hundredths, _ := strconv.ParseFloat(match[4], 64)
	elapsed := hours*3600 + minutes*60 + seconds + hundredths/100

	event := ProgressEvent{
		ElapsedSec: elapsed,
		TotalSec:   m.total,
	}
	if m.total > 0 {
		event.Percent = 100 * elapsed / m.total
		if event.Percent > 100 {
			event.Percent = 100
		}
	}
	if sm := speedRe.FindStringSubmatch(line); sm != nil {
		if speed, err := strconv.ParseFloat(sm[1], 64); err == nil {
			event.Speed = speed
		}
	}

	m.last = event
	if m.emit != nil {
		m.emit(event)
	}
}

// Finish emits the final 100% event after a successful exit
func (m *Monitor) Finish() {
	event := ProgressEvent{
		Percent:    100,
		ElapsedSec: m.total,
		TotalSec:   m.total,
		Speed:      m.last.Speed,
	}
	if m.emit != nil {
		m.emit(event)
	}
}

// Tail returns the captured trailing output for failure diagnostics
func (m *Monitor) Tail() string {
	return strings.Join(m.tail, "\n")
}
