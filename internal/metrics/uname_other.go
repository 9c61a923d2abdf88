//go:build !unix

package metrics

import "context"

func readUtsname(ctx context.Context) (utsname, error) {
	return utsnameFromHost(ctx)
}
