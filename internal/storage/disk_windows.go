//go:build windows

package storage

import "fmt"

// GetDiskSpace is not implemented on Windows.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	return nil, fmt.Errorf("disk space check not supported on windows")
}
