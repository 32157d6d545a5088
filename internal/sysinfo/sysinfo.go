// Package sysinfo reports facts about the kiosk host for health checks.
package sysinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Info describes the machine the kiosk runs on.
type Info struct {
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	Platform      string  `json:"platform,omitempty"`
	KernelVersion string  `json:"kernel_version,omitempty"`
	Arch          string  `json:"arch"`
	UptimeSeconds uint64  `json:"uptime_seconds,omitempty"`
	TotalMemoryMB uint64  `json:"total_memory_mb,omitempty"`
	UsedMemoryPct float64 `json:"used_memory_percent,omitempty"`
}

// Collect gathers host information. Fields that cannot be read are left empty;
// only the runtime values are guaranteed.
func Collect() Info {
	info := Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if h, err := host.Info(); err == nil {
		info.Hostname = h.Hostname
		info.Platform = h.Platform
		info.KernelVersion = h.KernelVersion
		info.UptimeSeconds = h.Uptime
		if h.KernelArch != "" {
			info.Arch = h.KernelArch
		}
	}

	if m, err := mem.VirtualMemory(); err == nil {
		info.TotalMemoryMB = m.Total / 1024 / 1024
		info.UsedMemoryPct = m.UsedPercent
	}

	return info
}
