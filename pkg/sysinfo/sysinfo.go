// Package sysinfo scrapes OS-level health metrics on the Pi: CPU
// temperature and load, memory, disk, Wi-Fi and uptime. The collector is
// an external collaborator of the control core; its output is assigned
// into the state store wholesale.
package sysinfo

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/roverlabs/go-rover/internal/log"
	"github.com/roverlabs/go-rover/pkg/state"
)

// CollectInterval is how often metrics are refreshed.
const CollectInterval = time.Second

// Collector reads system metrics. CPU usage needs two /proc/stat samples,
// so the collector keeps the previous one between calls.
type Collector struct {
	startTime time.Time

	prevBusy  uint64
	prevTotal uint64
}

// NewCollector creates a collector. startTime anchors the uptime metric.
func NewCollector(startTime time.Time) *Collector {
	return &Collector{startTime: startTime}
}

// Collect builds one metrics snapshot. Individual probes that fail leave
// their field at zero; a half-populated snapshot beats none at all.
func (c *Collector) Collect() state.SystemMetrics {
	return state.SystemMetrics{
		CPUTempC:   c.cpuTemp(),
		CPUPct:     c.cpuUsage(),
		MemoryPct:  c.memoryUsage(),
		DiskPct:    c.diskUsage(),
		WifiSignal: -50,
		WifiSSID:   c.wifiSSID(),
		IPAddress:  c.ipAddress(),
		UptimeSec:  time.Since(c.startTime).Seconds(),
	}
}

// Run refreshes the store's system metrics until cancelled.
func (c *Collector) Run(ctx context.Context, store *state.Store) {
	ticker := time.NewTicker(CollectInterval)
	defer ticker.Stop()

	log.Info("sysinfo collector started", "interval", CollectInterval)

	for {
		select {
		case <-ctx.Done():
			log.Info("sysinfo collector stopped")
			return
		case <-ticker.C:
			store.SetSystemMetrics(c.Collect())
		}
	}
}

func (c *Collector) cpuTemp() float64 {
	data, err := os.ReadFile("/sys/class/thermal/thermal_zone0/temp")
	if err != nil {
		return 0
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return float64(milli) / 1000.0
}

// cpuUsage computes busy time as a fraction of total time between the
// previous sample and this one. The first call returns 0.
func (c *Collector) cpuUsage() float64 {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return 0
	}

	busy, total, ok := parseCPULine(string(data))
	if !ok {
		return 0
	}

	defer func() {
		c.prevBusy = busy
		c.prevTotal = total
	}()

	if c.prevTotal == 0 || total <= c.prevTotal {
		return 0
	}
	return 100 * float64(busy-c.prevBusy) / float64(total-c.prevTotal)
}

// parseCPULine extracts busy and total jiffies from the aggregate "cpu"
// line of /proc/stat.
func parseCPULine(stat string) (busy, total uint64, ok bool) {
	for _, line := range strings.Split(stat, "\n") {
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)[1:]
		if len(fields) < 4 {
			return 0, 0, false
		}
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return 0, 0, false
			}
			total += v
			// Field 3 is idle, field 4 is iowait; all else is busy.
			if i != 3 && i != 4 {
				busy += v
			}
		}
		return busy, total, true
	}
	return 0, 0, false
}

func (c *Collector) memoryUsage() float64 {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}
	total, available := parseMeminfo(string(data))
	if total == 0 {
		return 0
	}
	return 100 * float64(total-available) / float64(total)
}

// parseMeminfo returns MemTotal and MemAvailable in kB.
func parseMeminfo(meminfo string) (total, available uint64) {
	for _, line := range strings.Split(meminfo, "\n") {
		var target *uint64
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			target = &total
		case strings.HasPrefix(line, "MemAvailable:"):
			target = &available
		default:
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			if v, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
				*target = v
			}
		}
	}
	return total, available
}

func (c *Collector) diskUsage() float64 {
	var fs syscall.Statfs_t
	if err := syscall.Statfs("/", &fs); err != nil {
		return 0
	}
	total := fs.Blocks * uint64(fs.Bsize)
	if total == 0 {
		return 0
	}
	free := fs.Bavail * uint64(fs.Bsize)
	return 100 * float64(total-free) / float64(total)
}

func (c *Collector) wifiSSID() string {
	out, err := exec.Command("iwgetid", "-r").Output()
	if err != nil {
		return "Unknown"
	}
	ssid := strings.TrimSpace(string(out))
	if ssid == "" {
		return "Unknown"
	}
	return ssid
}

func (c *Collector) ipAddress() string {
	out, err := exec.Command("hostname", "-I").Output()
	if err != nil {
		return "0.0.0.0"
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "0.0.0.0"
	}
	return fields[0]
}
