//go:build !windows

package util

import "os"

// IsElevated reports whether the process runs as root
func IsElevated() bool {
	return os.Geteuid() == 0
}
