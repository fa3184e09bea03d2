package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func getRAMInfo() (*RAMInfo, error) {
	total, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return nil, fmt.Errorf("failed to get total memory: %w", err)
	}

	freePages, err := unix.SysctlUint32("vm.page_free_count")
	if err != nil {
		return nil, fmt.Errorf("failed to get free page count: %w", err)
	}

	totalBytes := int64(total)
	availableBytes := int64(freePages) * int64(unix.Getpagesize())

	return &RAMInfo{
		TotalBytes:     totalBytes,
		AvailableBytes: availableBytes,
		UsedBytes:      totalBytes - availableBytes,
	}, nil
}
