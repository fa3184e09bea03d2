package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func getRAMInfo() (*RAMInfo, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return nil, fmt.Errorf("sysinfo failed: %w", err)
	}

	unit := int64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	totalBytes := int64(si.Totalram) * unit
	if totalBytes == 0 {
		return nil, fmt.Errorf("could not determine total RAM")
	}
	// Buffers are reclaimable, so count them as available.
	availableBytes := (int64(si.Freeram) + int64(si.Bufferram)) * unit

	return &RAMInfo{
		TotalBytes:     totalBytes,
		AvailableBytes: availableBytes,
		UsedBytes:      totalBytes - availableBytes,
	}, nil
}
