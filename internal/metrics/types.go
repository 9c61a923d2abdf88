package metrics

import "errors"

// ErrUnsupported marks a facility the host platform does not provide
var ErrUnsupported = errors.New("facility not supported on this platform")

// VirtualMemory is the system-wide memory breakdown in bytes
type VirtualMemory struct {
	Total     uint64  `json:"total"`
	Available uint64  `json:"available"`
	Percent   float64 `json:"percent"`
	Used      uint64  `json:"used"`
	Active    uint64  `json:"active"`
	Inactive  uint64  `json:"inactive"`
	Buffers   uint64  `json:"buffers"`
	Cached    uint64  `json:"cached"`
	Shared    uint64  `json:"shared"`
	Slab      uint64  `json:"slab"`
}

// Swap is swap space usage; Sin/Sout are cumulative bytes swapped in and out
type Swap struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
	Sin     uint64  `json:"sin"`
	Sout    uint64  `json:"sout"`
}

// CPUStats holds cumulative kernel event counters since boot
type CPUStats struct {
	CtxSwitches    uint64 `json:"ctx_switches"`
	Interrupts     uint64 `json:"interrupts"`
	SoftInterrupts uint64 `json:"soft_interrupts"`
	Syscalls       uint64 `json:"syscalls"`
}

// CPUTimes is the seconds a core spent in each mode
type CPUTimes struct {
	User      float64 `json:"user"`
	Nice      float64 `json:"nice"`
	System    float64 `json:"system"`
	Idle      float64 `json:"idle"`
	Iowait    float64 `json:"iowait"`
	Irq       float64 `json:"irq"`
	Softirq   float64 `json:"softirq"`
	Steal     float64 `json:"steal"`
	Guest     float64 `json:"guest"`
	GuestNice float64 `json:"guest_nice"`
}

// CPUClock is a core frequency in MHz
type CPUClock struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// DiskIO holds cumulative counters for one block device. Times are milliseconds.
type DiskIO struct {
	ReadCount        uint64 `json:"read_count"`
	WriteCount       uint64 `json:"write_count"`
	ReadBytes        uint64 `json:"read_bytes"`
	WriteBytes       uint64 `json:"write_bytes"`
	ReadTime         uint64 `json:"read_time"`
	WriteTime        uint64 `json:"write_time"`
	ReadMergedCount  uint64 `json:"read_merged_count"`
	WriteMergedCount uint64 `json:"write_merged_count"`
	BusyTime         uint64 `json:"busy_time"`
}

// NetIO holds cumulative counters for one network interface
type NetIO struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	Errin       uint64 `json:"errin"`
	Errout      uint64 `json:"errout"`
	Dropin      uint64 `json:"dropin"`
	Dropout     uint64 `json:"dropout"`
}

// ProcessSummary is one row of the process listing
type ProcessSummary struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	Username      string  `json:"username"`
	MemoryPercent float32 `json:"memory_percent"`
	CPUPercent    float64 `json:"cpu_percent"`
}

// Temperature is one sensor reading in Celsius; zero High/Critical means unknown
type Temperature struct {
	Label    string  `json:"label"`
	Current  float64 `json:"current"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

// Fan is one fan reading in RPM
type Fan struct {
	Label   string  `json:"label"`
	Current float64 `json:"current"`
}

// Sentinel SecsLeft values
const (
	SecsLeftUnknown   = -1
	SecsLeftUnlimited = -2 // on mains power
)

// Battery reports charge state
type Battery struct {
	Percent      float64 `json:"percent"`
	SecsLeft     int64   `json:"secsleft"`
	PowerPlugged bool    `json:"power_plugged"`
}

// NoBattery is reported when the host has no battery
var NoBattery = Battery{Percent: 0, SecsLeft: 0, PowerPlugged: true}

// Sensors groups every hardware sensor reading
type Sensors struct {
	Temperatures map[string][]Temperature `json:"senstemp"`
	Fans         map[string][]Fan         `json:"fanspeed"`
	Battery      Battery                  `json:"battstat"`
}

// EmptySensors returns the placeholder used when no sensor facility answered
func EmptySensors() Sensors {
	return Sensors{
		Temperatures: map[string][]Temperature{},
		Fans:         map[string][]Fan{},
		Battery:      NoBattery,
	}
}

// Uname identifies the operating system and the calling user
type Uname struct {
	System   string `json:"System name"`
	Host     string `json:"Host name"`
	Version  string `json:"Version"`
	Username string `json:"Username"`
}

// Partition is one mounted filesystem
type Partition struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	Fstype     string `json:"fstype"`
	Opts       string `json:"opts"`
}

// NetAddr is one address bound to an interface; empty strings mean absent
type NetAddr struct {
	Address   string `json:"address"`
	Netmask   string `json:"netmask"`
	Broadcast string `json:"broadcast"`
	PTP       string `json:"ptp"`
}

// Duplex modes reported in NetStat
const (
	DuplexUnknown = 0
	DuplexHalf    = 1
	DuplexFull    = 2
)

// NetStat is the link state of an interface. Speed is Mbit/s, 0 when unknown.
type NetStat struct {
	IsUp   bool `json:"isup"`
	Duplex int  `json:"duplex"`
	Speed  int  `json:"speed"`
	MTU    int  `json:"mtu"`
}
