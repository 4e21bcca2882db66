package sysinfo

import (
	"math"
	"testing"
	"time"
)

func TestParseCPULine(t *testing.T) {
	stat := "cpu  100 0 50 800 50 0 0 0 0 0\ncpu0 50 0 25 400 25 0 0 0 0 0\n"

	busy, total, ok := parseCPULine(stat)
	if !ok {
		t.Fatal("parse failed")
	}
	if total != 1000 {
		t.Errorf("total: got %d, want 1000", total)
	}
	// idle (800) and iowait (50) excluded from busy.
	if busy != 150 {
		t.Errorf("busy: got %d, want 150", busy)
	}
}

func TestParseCPULine_Malformed(t *testing.T) {
	if _, _, ok := parseCPULine("intr 12345\n"); ok {
		t.Error("parsed stat with no cpu line")
	}
	if _, _, ok := parseCPULine("cpu  1 2\n"); ok {
		t.Error("parsed truncated cpu line")
	}
}

func TestCPUUsage_Delta(t *testing.T) {
	busy1, total1, _ := parseCPULine("cpu  100 0 50 800 50 0 0 0 0 0\n")
	busy2, total2, _ := parseCPULine("cpu  250 0 100 1050 100 0 0 0 0 0\n")

	got := 100 * float64(busy2-busy1) / float64(total2-total1)
	if math.Abs(got-40) > 1e-9 {
		t.Errorf("usage: got %v, want 40", got)
	}
}

func TestParseMeminfo(t *testing.T) {
	meminfo := "MemTotal:       8000000 kB\nMemFree:        1000000 kB\nMemAvailable:   6000000 kB\n"

	total, available := parseMeminfo(meminfo)
	if total != 8000000 {
		t.Errorf("total: got %d", total)
	}
	if available != 6000000 {
		t.Errorf("available: got %d", available)
	}
}

func TestCollect_NeverPanics(t *testing.T) {
	c := NewCollector(time.Now().Add(-time.Minute))

	m := c.Collect()

	if m.UptimeSec < 59 || m.UptimeSec > 120 {
		t.Errorf("uptime: got %v, want ~60s", m.UptimeSec)
	}
	if m.MemoryPct < 0 || m.MemoryPct > 100 {
		t.Errorf("memory pct out of range: %v", m.MemoryPct)
	}
	if m.DiskPct < 0 || m.DiskPct > 100 {
		t.Errorf("disk pct out of range: %v", m.DiskPct)
	}
}
