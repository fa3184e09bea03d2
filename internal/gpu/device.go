package gpu

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/xupit3r/bitgrid/internal/logging"
	"github.com/xupit3r/bitgrid/internal/system"
)

// Device represents a compute device (CPU or GPU)
type Device interface {
	// Type returns the device type
	Type() DeviceType

	// Name returns a human-readable device name
	Name() string

	// Allocate allocates a buffer of the given size in bytes
	Allocate(size int64) (Buffer, error)

	// Copy copies data from src to dst buffer
	Copy(dst, src Buffer, size int64) error

	// Sync waits for all pending operations to complete
	Sync() error

	// Free releases the device and all associated resources
	Free() error

	// MemoryUsage returns current device memory usage in bytes (used, total)
	MemoryUsage() (int64, int64)
}

// DeviceType represents the type of compute device
type DeviceType int

const (
	DeviceTypeCPU DeviceType = iota
	DeviceTypeGPU
)

func (dt DeviceType) String() string {
	switch dt {
	case DeviceTypeCPU:
		return "CPU"
	case DeviceTypeGPU:
		return "GPU"
	default:
		return "Unknown"
	}
}

// GetDefaultDevice returns the default device for the current system.
// Metal is preferred on macOS and CUDA on Linux; the CPU device is the
// fallback when neither can be initialized.
func GetDefaultDevice() (Device, error) {
	switch runtime.GOOS {
	case "darwin":
		dev, err := NewMetalDevice()
		if err == nil {
			return dev, nil
		}
		logging.Debugf("Metal unavailable, using CPU device: %v", err)
	case "linux":
		dev, err := NewCUDADevice()
		if err == nil {
			return dev, nil
		}
		logging.Debugf("CUDA unavailable, using CPU device: %v", err)
	}

	return NewCPUDevice(), nil
}

// GetDevice returns a device of the specified type
func GetDevice(dtype DeviceType) (Device, error) {
	switch dtype {
	case DeviceTypeCPU:
		return NewCPUDevice(), nil
	case DeviceTypeGPU:
		if runtime.GOOS == "darwin" {
			return NewMetalDevice()
		}
		if runtime.GOOS == "linux" {
			return NewCUDADevice()
		}
		return nil, fmt.Errorf("GPU not supported on %s", runtime.GOOS)
	default:
		return nil, fmt.Errorf("unknown device type: %v", dtype)
	}
}

// CPUDevice serves host memory as device memory. Its buffers are
// host-addressable, so kernels run by the host launcher can use them
// directly.
type CPUDevice struct {
	name string
	used atomic.Int64
}

// NewCPUDevice creates a new CPU device
func NewCPUDevice() *CPUDevice {
	name := fmt.Sprintf("CPU (%s, %d cores", runtime.GOARCH, runtime.NumCPU())
	if f := vectorFeature(); f != "" {
		name += ", " + f
	}
	return &CPUDevice{name: name + ")"}
}

// vectorFeature names the widest SIMD extension the host reports.
func vectorFeature() string {
	switch {
	case cpu.X86.HasAVX512F:
		return "avx512"
	case cpu.X86.HasAVX2:
		return "avx2"
	case cpu.ARM64.HasSVE:
		return "sve"
	case cpu.ARM64.HasASIMD:
		return "neon"
	}
	return ""
}

func (d *CPUDevice) Type() DeviceType { return DeviceTypeCPU }
func (d *CPUDevice) Name() string     { return d.name }

func (d *CPUDevice) Allocate(size int64) (Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size: %d", size)
	}
	tight, err := system.CheckFits(size)
	if err != nil {
		return nil, err
	}
	if tight {
		logging.WithComponent("gpu").Warnf("allocating %s exceeds available host memory", system.FormatBytes(size))
	}

	data, err := allocHost(paddedSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate host buffer of size %d: %w", size, err)
	}

	d.used.Add(size)
	return &cpuBuffer{data: data, size: size, device: d}, nil
}

func (d *CPUDevice) Copy(dst, src Buffer, size int64) error {
	dstBuf, ok := dst.(*cpuBuffer)
	if !ok {
		return fmt.Errorf("dst is not a CPU buffer")
	}
	srcBuf, ok := src.(*cpuBuffer)
	if !ok {
		return fmt.Errorf("src is not a CPU buffer")
	}
	if size > dstBuf.size || size > srcBuf.size {
		return fmt.Errorf("copy size %d exceeds buffer size (dst: %d, src: %d)",
			size, dstBuf.size, srcBuf.size)
	}

	dstBuf.mu.Lock()
	defer dstBuf.mu.Unlock()
	if dstBuf != srcBuf {
		srcBuf.mu.RLock()
		defer srcBuf.mu.RUnlock()
	}
	if dstBuf.data == nil || srcBuf.data == nil {
		return fmt.Errorf("copy on freed buffer")
	}
	copy(dstBuf.data[:size], srcBuf.data[:size])
	return nil
}

func (d *CPUDevice) Sync() error {
	// Host memory operations complete synchronously
	return nil
}

func (d *CPUDevice) Free() error {
	// Buffers are released individually
	return nil
}

// MemoryUsage reports bytes held by live buffers of this device and the
// total physical memory of the host.
func (d *CPUDevice) MemoryUsage() (int64, int64) {
	total, err := system.GetTotalRAM()
	if err != nil {
		total = 0
	}
	return d.used.Load(), total
}

// cpuBuffer implements HostBuffer for host memory
type cpuBuffer struct {
	data   []byte
	size   int64
	device *CPUDevice
	mu     sync.RWMutex
}

func (b *cpuBuffer) Size() int64 {
	return b.size
}

func (b *cpuBuffer) Ptr() uintptr {
	return uintptr(b.HostPointer())
}

func (b *cpuBuffer) HostPointer() unsafe.Pointer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&b.data[0])
}

func (b *cpuBuffer) CopyToHost(dst []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return fmt.Errorf("buffer already freed")
	}
	if int64(len(dst)) < b.size {
		return fmt.Errorf("destination buffer too small: %d < %d", len(dst), b.size)
	}
	copy(dst, b.data[:b.size])
	return nil
}

func (b *cpuBuffer) CopyFromHost(src []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return fmt.Errorf("buffer already freed")
	}
	if b.size < int64(len(src)) {
		return fmt.Errorf("buffer too small: %d < %d", b.size, len(src))
	}
	copy(b.data, src)
	return nil
}

func (b *cpuBuffer) Zero() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return fmt.Errorf("buffer already freed")
	}
	clear(b.data)
	return nil
}

func (b *cpuBuffer) Free() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil
	}
	err := freeHost(b.data)
	b.data = nil
	b.device.used.Add(-b.size)
	if err != nil {
		return fmt.Errorf("failed to free host buffer: %w", err)
	}
	return nil
}

func (b *cpuBuffer) Device() Device {
	return b.device
}
