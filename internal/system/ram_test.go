package system

import (
	"errors"
	"runtime"
	"testing"
)

func TestGetRAMInfo(t *testing.T) {
	info, err := GetRAMInfo()
	if err != nil {
		if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
			t.Skipf("RAM info unsupported: %v", err)
		}
		t.Fatalf("GetRAMInfo failed: %v", err)
	}

	if info.TotalBytes <= 0 {
		t.Errorf("Expected positive total bytes, got %d", info.TotalBytes)
	}

	if info.AvailableBytes < 0 {
		t.Errorf("Expected non-negative available bytes, got %d", info.AvailableBytes)
	}

	if info.AvailableBytes > info.TotalBytes {
		t.Errorf("Available bytes (%d) cannot exceed total bytes (%d)",
			info.AvailableBytes, info.TotalBytes)
	}

	if info.UsedBytes != info.TotalBytes-info.AvailableBytes {
		t.Errorf("UsedBytes = %d, want %d", info.UsedBytes, info.TotalBytes-info.AvailableBytes)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{1024 * 1024 * 1024, "1.0 GiB"},
		{1536 * 1024 * 1024, "1.5 GiB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.bytes)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d) = %s; want %s", tt.bytes, result, tt.expected)
		}
	}
}

func TestCheckFits(t *testing.T) {
	info, err := GetRAMInfo()
	if err != nil {
		t.Skipf("RAM info unsupported: %v", err)
	}

	if tight, err := CheckFits(1); err != nil || tight {
		t.Errorf("CheckFits(1) = %v, %v; want fits", tight, err)
	}
	if _, err := CheckFits(info.TotalBytes + 1); !errors.Is(err, ErrInsufficientMemory) {
		t.Errorf("CheckFits(total+1) error = %v, want ErrInsufficientMemory", err)
	}
	if tight, err := CheckFits(info.TotalBytes); err != nil || tight != (info.TotalBytes > info.AvailableBytes) {
		t.Errorf("CheckFits(total) = %v, %v", tight, err)
	}
}
