package system

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

func getRAMInfo() (*RAMInfo, error) {
	var ms windows.MemoryStatusEx
	ms.Length = uint32(unsafe.Sizeof(ms))
	if err := windows.GlobalMemoryStatusEx(&ms); err != nil {
		return nil, fmt.Errorf("GlobalMemoryStatusEx failed: %w", err)
	}

	totalBytes := int64(ms.TotalPhys)
	availableBytes := int64(ms.AvailPhys)

	return &RAMInfo{
		TotalBytes:     totalBytes,
		AvailableBytes: availableBytes,
		UsedBytes:      totalBytes - availableBytes,
	}, nil
}
