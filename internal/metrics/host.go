package metrics

import (
	"context"
	"fmt"
	"os/user"
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

// CtimeLayout renders timestamps the way the frontend displays them
const CtimeLayout = time.ANSIC

// Uname identifies the kernel, machine and the user the service runs as
func (h *Host) Uname(ctx context.Context) (Uname, error) {
	sys, err := readUtsname(ctx)
	if err != nil {
		return Uname{}, err
	}

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	return Uname{
		System:   sys.sysname + " " + sys.release,
		Host:     sys.nodename + " [" + sys.machine + "] ",
		Version:  sys.version,
		Username: username,
	}, nil
}

type utsname struct {
	sysname, nodename, release, version, machine string
}

// utsnameFromHost fills utsname from gopsutil where no uname(2) exists
func utsnameFromHost(ctx context.Context) (utsname, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return utsname{}, fmt.Errorf("failed to read host info: %w", err)
	}
	return utsname{
		sysname:  info.OS,
		nodename: info.Hostname,
		release:  info.KernelVersion,
		version:  info.PlatformVersion,
		machine:  info.KernelArch,
	}, nil
}

// BootTime returns when the host booted
func (h *Host) BootTime(ctx context.Context) (time.Time, error) {
	secs, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read boot time: %w", err)
	}
	return time.Unix(int64(secs), 0), nil
}

// FormatCtime renders t in local time using CtimeLayout
func FormatCtime(t time.Time) string {
	return t.Local().Format(CtimeLayout)
}
