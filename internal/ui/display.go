package ui

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	constants "pimonitor/config"
	"pimonitor/internal/process"
	"pimonitor/pkg/utils"
)

// KeyValue is one row of a rendered list. Lists keep insertion order.
type KeyValue struct {
	Key   string
	Value string
}

// PrintSection prints a section header
func PrintSection(w io.Writer, title string) {
	fmt.Fprintln(w, RenderSectionStart(title))
}

// PrintSectionEnd prints a section footer
func PrintSectionEnd(w io.Writer) {
	fmt.Fprintln(w, RenderSectionEnd())
}

// PrintStatus prints a status message
func PrintStatus(w io.Writer, status, message string) {
	fmt.Fprintln(w, RenderStatus(status, message))
}

// CreateList renders rows as bulleted key-value pairs with the keys padded
// to a common width
func CreateList(rows []KeyValue) string {
	width := 0
	for _, row := range rows {
		if len(row.Key) > width {
			width = len(row.Key)
		}
	}

	var result strings.Builder
	for _, row := range rows {
		result.WriteString(RenderKeyValue(row.Key+strings.Repeat(" ", width-len(row.Key)), row.Value))
		result.WriteString("\n")
	}
	return result.String()
}

// StartupInfo is what the serve command prints before accepting connections
type StartupInfo struct {
	IPVersion    string
	Passcode     string
	ReferenceURI string
	StaticDir    string
	Metrics      bool
}

// PrintStartupBanner prints the banner, the connection details and the
// versions of the libraries that do the collecting
func PrintStartupBanner(w io.Writer, info StartupInfo) {
	fmt.Fprintln(w, RenderBanner())
	fmt.Fprintln(w, RenderSubtitle(constants.APP_DESCRIPTION))
	fmt.Fprintln(w)

	ipVersion := info.IPVersion
	if ipVersion == constants.IP_VERSION_ANY {
		ipVersion = "any"
	}

	PrintSection(w, "Server")
	fmt.Fprint(w, CreateList([]KeyValue{
		{"Version", constants.APP_VERSION},
		{"IP version", ipVersion},
		{"Passcode", PrimaryStyle.Render(info.Passcode)},
		{"Reference URI", info.ReferenceURI},
		{"Dashboard", info.StaticDir},
		{"Metrics", fmt.Sprintf("%t", info.Metrics)},
	}))
	PrintSectionEnd(w)

	PrintSection(w, "Libraries")
	fmt.Fprint(w, CreateList(LibraryVersions()))
	PrintSectionEnd(w)
}

// trackedModules are the libraries reported in the startup banner
var trackedModules = []KeyValue{
	{"gopsutil", "github.com/shirou/gopsutil/v4"},
	{"procfs", "github.com/prometheus/procfs"},
	{"client_golang", "github.com/prometheus/client_golang"},
	{"otel", "go.opentelemetry.io/otel"},
	{"cobra", "github.com/spf13/cobra"},
}

// LibraryVersions reports the Go runtime and the linked versions of the
// tracked modules. Modules missing from the build info show "unknown".
func LibraryVersions() []KeyValue {
	versions := map[string]string{}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Replace != nil {
				dep = dep.Replace
			}
			versions[dep.Path] = dep.Version
		}
	}

	rows := []KeyValue{{"go", runtime.Version()}}
	for _, m := range trackedModules {
		v, ok := versions[m.Value]
		if !ok || v == "" {
			v = "unknown"
		}
		rows = append(rows, KeyValue{m.Key, v})
	}
	return rows
}

// RenderProcessFact renders a process fact sheet for the terminal
func RenderProcessFact(f *process.Fact) string {
	terminal := "-"
	if f.Terminal != nil {
		terminal = *f.Terminal
	}

	var b strings.Builder
	b.WriteString(RenderSectionStart(fmt.Sprintf("Process %d", f.PID)) + "\n")
	b.WriteString(CreateList([]KeyValue{
		{"Name", utils.TruncateString(f.Name, 40)},
		{"Status", renderProcessStatus(f.Status)},
		{"User", fmt.Sprintf("%s (uid %d, gid %d)", f.Username, f.UIDs.Real, f.GIDs.Real)},
		{"Started", f.CreateTime},
		{"Terminal", terminal},
		{"Threads", fmt.Sprintf("%d", f.NumThreads)},
		{"CPU", RenderProgressBar(f.CPUPercent, 20) + " " + utils.FormatPercentage(f.CPUPercent)},
		{"Memory", RenderProgressBar(float64(f.MemoryPercent), 20) + " " + utils.FormatPercentage(float64(f.MemoryPercent))},
		{"RSS", utils.FormatBytes(int64(f.MemoryInfo.RSS))},
		{"VMS", utils.FormatBytes(int64(f.MemoryInfo.VMS))},
		{"CPU time", fmt.Sprintf("%.2fs user, %.2fs system", f.CPUTimes.User, f.CPUTimes.System)},
		{"Ctx switches", fmt.Sprintf("%d voluntary, %d involuntary", f.NumCtxSwitches.Voluntary, f.NumCtxSwitches.Involuntary)},
	}))
	b.WriteString(RenderSectionEnd() + "\n")
	return b.String()
}

func renderProcessStatus(status string) string {
	switch status {
	case process.StatusRunning:
		return SuccessStyle.Render(status)
	case process.StatusStopped, process.StatusDiskSleep:
		return WarningStyle.Render(status)
	case process.StatusZombie, process.StatusDead:
		return ErrorStyle.Render(status)
	default:
		return ValueStyle.Render(status)
	}
}
