// Package system gathers the machine-wide figures shown above the local
// process table: hostname, uptime, load average, CPU and memory usage.
package system

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Summary is a snapshot of whole-machine usage.
type Summary struct {
	Hostname string
	Uptime   time.Duration

	Load1  float64
	Load5  float64
	Load15 float64

	CPUPercent float64
	MemTotal   uint64
	MemUsed    uint64
	MemPercent float64
}

// Local reads the summary for this machine. Only host.Info is required;
// the other figures are left at zero when unavailable.
func Local() (*Summary, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	s := &Summary{
		Hostname: info.Hostname,
		Uptime:   time.Duration(info.Uptime) * time.Second,
	}

	// Load average might not be available on all systems
	if avg, err := load.Avg(); err == nil {
		s.Load1, s.Load5, s.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	// Interval 0 compares against the previous call, so this never blocks
	// the refresh loop.
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		s.MemTotal = vmem.Total
		s.MemUsed = vmem.Used
		s.MemPercent = vmem.UsedPercent
	}

	return s, nil
}

// FormatUptime converts uptime to a short human readable form.
func FormatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
