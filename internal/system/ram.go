package system

import (
	"errors"
	"fmt"
)

// ErrInsufficientMemory is returned when a request exceeds physical memory.
var ErrInsufficientMemory = errors.New("insufficient host memory")

// RAMInfo contains information about host memory
type RAMInfo struct {
	TotalBytes     int64
	AvailableBytes int64
	UsedBytes      int64
}

// GetRAMInfo returns information about host RAM
func GetRAMInfo() (*RAMInfo, error) {
	return getRAMInfo()
}

// FormatBytes formats bytes as human-readable string
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// CheckFits reports whether a size byte allocation can be served from host
// RAM. It fails only when size exceeds physical memory; tight is set when
// size exceeds what is currently available. Without RAM information every
// request fits.
func CheckFits(size int64) (tight bool, err error) {
	info, err := GetRAMInfo()
	if err != nil {
		return false, nil
	}
	if size > info.TotalBytes {
		return false, fmt.Errorf("%w: %s requested, %s installed",
			ErrInsufficientMemory, FormatBytes(size), FormatBytes(info.TotalBytes))
	}
	return size > info.AvailableBytes, nil
}

// GetTotalRAM returns total RAM in bytes
func GetTotalRAM() (int64, error) {
	info, err := GetRAMInfo()
	if err != nil {
		return 0, err
	}
	return info.TotalBytes, nil
}
