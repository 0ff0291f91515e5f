package render

import (
	"strings"
	"testing"
)

func TestMonitorParsesTimeMarker(t *testing.T) {
	var events []ProgressEvent
	m := NewMonitor(120, func(e ProgressEvent) { events = append(events, e) })

	m.ConsumeLine("frame=  240 fps= 30 q=28.0 size=    1024kB time=00:01:00.50 bitrate= 139.2kbits/s speed=1.98x")

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.ElapsedSec != 60.5 {
		t.Errorf("elapsed = %v, want 60.5", e.ElapsedSec)
	}
	if e.TotalSec != 120 {
		t.Errorf("total = %v, want 120", e.TotalSec)
	}
	if want := 100 * 60.5 / 120; e.Percent != want {
		t.Errorf("percent = %v, want %v", e.Percent, want)
	}
	if e.Speed != 1.98 {
		t.Errorf("speed = %v, want 1.98", e.Speed)
	}
}

func TestMonitorIgnoresUnparseableLines(t *testing.T) {
	count := 0
	m := NewMonitor(60, func(ProgressEvent) { count++ })

	m.ConsumeLine("Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':")
	m.ConsumeLine("  Stream #0:0(und): Video: h264")
	m.ConsumeLine("")
	m.ConsumeLine("garbage time=notatime speed=x")

	if count != 0 {
		t.Errorf("emitted %d events from unparseable lines", count)
	}
}

func TestMonitorClampsPercent(t *testing.T) {
	var last ProgressEvent
	m := NewMonitor(10, func(e ProgressEvent) { last = e })

	// Encoder can report slightly past the probed duration
	m.ConsumeLine("time=00:00:12.00 speed=2.0x")

	if last.Percent != 100 {
		t.Errorf("percent = %v, want clamped to 100", last.Percent)
	}
}

func TestMonitorFinish(t *testing.T) {
	var last ProgressEvent
	m := NewMonitor(30, func(e ProgressEvent) { last = e })

	m.ConsumeLine("time=00:00:15.00 speed=1.50x")
	m.Finish()

	if last.Percent != 100 {
		t.Errorf("final percent = %v, want 100", last.Percent)
	}
	if last.ElapsedSec != 30 {
		t.Errorf("final elapsed = %v, want total", last.ElapsedSec)
	}
	if last.Speed != 1.5 {
		t.Errorf("final speed = %v, want last seen 1.5", last.Speed)
	}
}

func TestMonitorTailRing(t *testing.T) {
	m := NewMonitor(10, nil)

	m.ConsumeLine("first diagnostic line")
	for i := 0; i < tailLines; i++ {
		m.ConsumeLine("filler line")
	}
	m.ConsumeLine("out.mp4: Permission denied")

	tail := m.Tail()
	if strings.Contains(tail, "first diagnostic line") {
		t.Error("oldest line should have rotated out of the tail")
	}
	if !strings.Contains(tail, "Permission denied") {
		t.Error("latest diagnostic missing from tail")
	}
}
