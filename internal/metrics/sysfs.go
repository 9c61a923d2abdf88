package metrics

import (
	"os"
	"strconv"
	"strings"
)

// readSysString reads a single-value sysfs attribute
func readSysString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readSysInt reads a single integer sysfs attribute
func readSysInt(path string) (int64, error) {
	s, err := readSysString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}
