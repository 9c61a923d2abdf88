// Package snapshot composes metric categories into the live and dead
// telemetry documents served to the dashboard.
package snapshot

import "pimonitor/internal/metrics"

// LiveSnapshot is the fast-changing state polled by the dashboard.
// Field order is the wire key order.
type LiveSnapshot struct {
	VirtualMemory metrics.VirtualMemory            `json:"virtdata"`
	Swap          metrics.Swap                     `json:"swapinfo"`
	CPUStats      metrics.CPUStats                 `json:"cpustats"`
	CPUTimes      map[int]metrics.CPUTimes         `json:"cputimes"`
	CPUPercent    map[int]float64                  `json:"cpuprcnt"`
	CPUClock      map[int]metrics.CPUClock         `json:"cpuclock"`
	DiskIO        map[string]metrics.DiskIO        `json:"diousage"`
	NetIO         map[string]metrics.NetIO         `json:"netusage"`
	Processes     map[int32]metrics.ProcessSummary `json:"procinfo"`
	Sensors       metrics.Sensors                  `json:"sensread"`
}

// DeadSnapshot is the mostly-static host inventory
type DeadSnapshot struct {
	OSName     metrics.Uname                         `json:"osnmdata"`
	CPUCount   string                                `json:"cpuquant"`
	CPUClock   map[int]metrics.CPUClock              `json:"cpuclock"`
	Partitions []metrics.Partition                   `json:"diskpart"`
	DiskIO     map[string]metrics.DiskIO             `json:"diousage"`
	NetIO      map[string]metrics.NetIO              `json:"netusage"`
	NetAddrs   map[string]map[string]metrics.NetAddr `json:"netaddrs"`
	NetStats   map[string]metrics.NetStat            `json:"netstats"`
	BootTime   string                                `json:"boottime"`
	Processes  map[int32]metrics.ProcessSummary      `json:"procinfo"`
	Sensors    metrics.Sensors                       `json:"sensread"`
}

// Category names used in logs and metric labels
const (
	CategoryVirtualMemory = "virtdata"
	CategorySwap          = "swapinfo"
	CategoryCPUStats      = "cpustats"
	CategoryCPUTimes      = "cputimes"
	CategoryCPUPercent    = "cpuprcnt"
	CategoryCPUClock      = "cpuclock"
	CategoryCPUCount      = "cpuquant"
	CategoryDiskIO        = "diousage"
	CategoryPartitions    = "diskpart"
	CategoryNetIO         = "netusage"
	CategoryNetAddrs      = "netaddrs"
	CategoryNetStats      = "netstats"
	CategoryProcesses     = "procinfo"
	CategoryTemperatures  = "senstemp"
	CategoryFans          = "fanspeed"
	CategoryBattery       = "battstat"
	CategoryUname         = "osnmdata"
	CategoryBootTime      = "boottime"
)
