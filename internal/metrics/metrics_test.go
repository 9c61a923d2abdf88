package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shirou/gopsutil/v4/sensors"
)

func TestGroupTemperatures(t *testing.T) {
	temps := []sensors.TemperatureStat{
		{SensorKey: "cpu_thermal", Temperature: 48.3},
		{SensorKey: "iwlwifi_1", Temperature: 39, High: 80, Critical: 100},
		{SensorKey: "cpu_thermal", Temperature: 47.9},
	}

	got := groupTemperatures(temps)

	if len(got) != 2 {
		t.Fatalf("Expected 2 chips, got %d: %+v", len(got), got)
	}
	if cpu := got["cpu_thermal"]; len(cpu) != 2 || cpu[0].Label != "" {
		t.Errorf("Expected two unlabeled cpu_thermal readings, got %+v", cpu)
	}
	wifi := got["iwlwifi_1"]
	if len(wifi) != 1 || wifi[0].High != 80 || wifi[0].Critical != 100 {
		t.Errorf("Thresholds not carried over: %+v", wifi)
	}
}

func TestParseInterfaceAddr(t *testing.T) {
	tests := []struct {
		name      string
		cidr      string
		broadcast bool
		family    string
		want      NetAddr
	}{
		{"ipv4 broadcast", "192.168.1.20/24", true, FamilyIPv4,
			NetAddr{Address: "192.168.1.20", Netmask: "255.255.255.0", Broadcast: "192.168.1.255"}},
		{"ipv4 loopback", "127.0.0.1/8", false, FamilyIPv4,
			NetAddr{Address: "127.0.0.1", Netmask: "255.0.0.0"}},
		{"ipv6", "fe80::1/64", true, FamilyIPv6,
			NetAddr{Address: "fe80::1", Netmask: "ffff:ffff:ffff:ffff::"}},
		{"bare ipv4", "10.0.0.1", false, FamilyIPv4,
			NetAddr{Address: "10.0.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, addr, ok := parseInterfaceAddr(tt.cidr, tt.broadcast)
			if !ok {
				t.Fatalf("parseInterfaceAddr(%q) rejected", tt.cidr)
			}
			if family != tt.family {
				t.Errorf("family = %q, want %q", family, tt.family)
			}
			if addr != tt.want {
				t.Errorf("addr = %+v, want %+v", addr, tt.want)
			}
		})
	}

	if _, _, ok := parseInterfaceAddr("not-an-address", false); ok {
		t.Error("Garbage address should be rejected")
	}
}

func TestCoreSampler_Percent(t *testing.T) {
	var s coreSampler

	first := s.percent([]cpu.TimesStat{{User: 10, Idle: 90}, {User: 5, Idle: 95}})
	if len(first) != 2 || first[0] != 0 || first[1] != 0 {
		t.Fatalf("First sample should report zero for every core, got %v", first)
	}

	second := s.percent([]cpu.TimesStat{{User: 60, Idle: 140}, {User: 5, Idle: 195}})
	if second[0] != 50 {
		t.Errorf("Core 0 expected 50%%, got %v", second[0])
	}
	if second[1] != 0 {
		t.Errorf("Idle core 1 expected 0%%, got %v", second[1])
	}
}

func TestClampPercent(t *testing.T) {
	tests := map[float64]float64{-5: 0, 0: 0, 42.5: 42.5, 100: 100, 180: 100}
	for in, want := range tests {
		if got := clampPercent(in); got != want {
			t.Errorf("clampPercent(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatCtime(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.Local)
	if got := FormatCtime(ts); got != "Tue Mar  5 07:08:09 2024" {
		t.Errorf("FormatCtime = %q", got)
	}
}

func TestHost_VirtualMemory(t *testing.T) {
	h := NewHost(0)
	vm, err := h.VirtualMemory(context.Background())
	if err != nil {
		t.Skipf("virtual memory unavailable: %v", err)
	}
	if vm.Total == 0 {
		t.Error("Expected non-zero total memory")
	}
	if vm.Percent < 0 || vm.Percent > 100 {
		t.Errorf("Memory percent out of range: %v", vm.Percent)
	}
}

func TestHost_CPUPercentKeys(t *testing.T) {
	h := NewHost(50 * time.Millisecond)
	pct, err := h.CPUPercent(context.Background())
	if err != nil {
		t.Skipf("cpu percent unavailable: %v", err)
	}
	for core, p := range pct {
		if core < 0 || core >= len(pct) {
			t.Errorf("Core index %d outside 0..%d", core, len(pct)-1)
		}
		if p < 0 || p > 100 {
			t.Errorf("Core %d percent out of range: %v", core, p)
		}
	}
}

func TestEmptySensors(t *testing.T) {
	s := EmptySensors()
	if s.Temperatures == nil || s.Fans == nil {
		t.Fatal("Placeholder maps must be non-nil")
	}
	if s.Battery != (Battery{Percent: 0, SecsLeft: 0, PowerPlugged: true}) {
		t.Errorf("Unexpected battery placeholder: %+v", s.Battery)
	}
}

var errGone = errors.New("process gone")

// exitingProcess answers like a gopsutil process that can exit between reads
type exitingProcess struct {
	name          string
	nameErr       error
	exitAfterName bool
	gone          bool
}

func (p *exitingProcess) NameWithContext(ctx context.Context) (string, error) {
	if p.nameErr != nil {
		return "", p.nameErr
	}
	if p.exitAfterName {
		p.gone = true
	}
	return p.name, nil
}

func (p *exitingProcess) UsernameWithContext(ctx context.Context) (string, error) {
	if p.gone {
		return "", errGone
	}
	return "pi", nil
}

func (p *exitingProcess) MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error) {
	if p.gone {
		return nil, errGone
	}
	return &process.MemoryInfoStat{RSS: 4096}, nil
}

func (p *exitingProcess) CPUPercentWithContext(ctx context.Context) (float64, error) {
	if p.gone {
		return 0, errGone
	}
	return 12.5, nil
}

func (p *exitingProcess) IsRunningWithContext(ctx context.Context) (bool, error) {
	return !p.gone, nil
}

func TestHost_ProcessesOmitsExited(t *testing.T) {
	prev := listProcesses
	t.Cleanup(func() { listProcesses = prev })
	listProcesses = func(ctx context.Context) ([]listedProcess, error) {
		return []listedProcess{
			{pid: 10, proc: &exitingProcess{name: "python3"}},
			{pid: 11, proc: &exitingProcess{name: "sleep", exitAfterName: true}},
			{pid: 12, proc: &exitingProcess{nameErr: errGone, gone: true}},
			{pid: 13, proc: &exitingProcess{nameErr: errors.New("permission denied")}},
		}, nil
	}

	procs, err := NewHost(0).Processes(context.Background())
	if err != nil {
		t.Fatalf("Processes failed: %v", err)
	}

	if len(procs) != 2 {
		t.Fatalf("Expected pids 10 and 13, got %+v", procs)
	}
	live := procs[10]
	if live.PID != 10 || live.Name != "python3" || live.Username != "pi" || live.CPUPercent != 12.5 {
		t.Errorf("Unexpected summary for live process: %+v", live)
	}
	if _, ok := procs[11]; ok {
		t.Error("Process that exited after its name was read should be omitted")
	}
	if _, ok := procs[12]; ok {
		t.Error("Process that exited before its name was read should be omitted")
	}
	if unnamed, ok := procs[13]; !ok || unnamed.Name != "" || unnamed.Username != "pi" {
		t.Errorf("Running process with unreadable name should be kept, got %+v", unnamed)
	}
}

func TestHost_ProcessesListError(t *testing.T) {
	prev := listProcesses
	t.Cleanup(func() { listProcesses = prev })
	listProcesses = func(ctx context.Context) ([]listedProcess, error) {
		return nil, errGone
	}

	if _, err := NewHost(0).Processes(context.Background()); !errors.Is(err, errGone) {
		t.Errorf("Expected wrapped list error, got %v", err)
	}
}
