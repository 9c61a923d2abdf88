//go:build unix

package metrics

import (
	"context"

	"golang.org/x/sys/unix"
)

func readUtsname(ctx context.Context) (utsname, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return utsnameFromHost(ctx)
	}
	return utsname{
		sysname:  unix.ByteSliceToString(u.Sysname[:]),
		nodename: unix.ByteSliceToString(u.Nodename[:]),
		release:  unix.ByteSliceToString(u.Release[:]),
		version:  unix.ByteSliceToString(u.Version[:]),
		machine:  unix.ByteSliceToString(u.Machine[:]),
	}, nil
}
