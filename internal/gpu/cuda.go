//go:build linux && cgo

package gpu

/*
#cgo CFLAGS: -I/opt/cuda/include -I/usr/local/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L/usr/local/cuda/lib64 -lcudart

#include <cuda_runtime.h>

static cudaError_t cuManaged(void** ptr, size_t size) {
    return cudaMallocManaged(ptr, size, cudaMemAttachGlobal);
}

static int cuSupportsManaged(int dev) {
    int v = 0;
    cudaDeviceGetAttribute(&v, cudaDevAttrManagedMemory, dev);
    return v;
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

// CUDADevice allocates bit-array storage in CUDA managed memory, which the
// driver maps into the host address space as well as the GPU's.
type CUDADevice struct {
	ordinal int
	name    string

	mu   sync.Mutex
	live map[*cudaBuffer]struct{}
}

// The CUDA runtime keeps one primary context per device, so one
// CUDADevice is shared process-wide.
var (
	cudaOnce   sync.Once
	cudaShared *CUDADevice
	cudaErr    error
)

// NewCUDADevice returns the device for CUDA ordinal 0, opening it on the
// first call.
func NewCUDADevice() (*CUDADevice, error) {
	cudaOnce.Do(func() {
		cudaShared, cudaErr = openCUDA(0)
	})
	return cudaShared, cudaErr
}

// check converts a CUDA status into an error naming the failed step.
func check(step string, status C.cudaError_t) error {
	if status == C.cudaSuccess {
		return nil
	}
	return fmt.Errorf("cuda: %s: %s", step, C.GoString(C.cudaGetErrorString(status)))
}

func openCUDA(ordinal int) (*CUDADevice, error) {
	var count C.int
	if err := check("counting devices", C.cudaGetDeviceCount(&count)); err != nil {
		return nil, err
	}
	if int(count) <= ordinal {
		return nil, fmt.Errorf("cuda: no device with ordinal %d (%d present)", ordinal, count)
	}
	if err := check("selecting device", C.cudaSetDevice(C.int(ordinal))); err != nil {
		return nil, err
	}
	if C.cuSupportsManaged(C.int(ordinal)) == 0 {
		return nil, fmt.Errorf("cuda: device %d has no managed memory support", ordinal)
	}

	var props C.struct_cudaDeviceProp
	if err := check("reading properties", C.cudaGetDeviceProperties(&props, C.int(ordinal))); err != nil {
		return nil, err
	}

	return &CUDADevice{
		ordinal: ordinal,
		name:    C.GoString(&props.name[0]),
		live:    make(map[*cudaBuffer]struct{}),
	}, nil
}

func (d *CUDADevice) Type() DeviceType { return DeviceTypeGPU }
func (d *CUDADevice) Name() string     { return d.name }

func (d *CUDADevice) Allocate(size int64) (Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size: %d", size)
	}

	var ptr unsafe.Pointer
	if err := check(fmt.Sprintf("allocating %d managed bytes", size), C.cuManaged(&ptr, C.size_t(paddedSize(size)))); err != nil {
		return nil, err
	}

	b := &cudaBuffer{ptr: ptr, size: size, device: d}
	d.mu.Lock()
	d.live[b] = struct{}{}
	d.mu.Unlock()
	return b, nil
}

func (d *CUDADevice) Copy(dst, src Buffer, size int64) error {
	db, ok := dst.(*cudaBuffer)
	if !ok {
		return fmt.Errorf("dst is not a CUDA buffer")
	}
	sb, ok := src.(*cudaBuffer)
	if !ok {
		return fmt.Errorf("src is not a CUDA buffer")
	}
	if size > db.size || size > sb.size {
		return fmt.Errorf("copy size %d exceeds buffer size (dst: %d, src: %d)", size, db.size, sb.size)
	}
	if db.ptr == nil || sb.ptr == nil {
		return fmt.Errorf("copy involves a freed buffer")
	}
	return check("copying buffer", C.cudaMemcpy(db.ptr, sb.ptr, C.size_t(size), C.cudaMemcpyDefault))
}

func (d *CUDADevice) Sync() error {
	return check("synchronizing", C.cudaDeviceSynchronize())
}

// Free releases every live buffer. The primary context stays open for
// later callers of NewCUDADevice.
func (d *CUDADevice) Free() error {
	d.mu.Lock()
	live := d.live
	d.live = make(map[*cudaBuffer]struct{})
	d.mu.Unlock()

	var first error
	for b := range live {
		if err := b.release(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (d *CUDADevice) MemoryUsage() (int64, int64) {
	var free, total C.size_t
	if C.cudaMemGetInfo(&free, &total) != C.cudaSuccess {
		return 0, 0
	}
	return int64(total) - int64(free), int64(total)
}

// cudaBuffer is a managed allocation. Host access is coherent once the
// device is idle, so host-side transfers synchronize first.
type cudaBuffer struct {
	mu     sync.RWMutex
	ptr    unsafe.Pointer
	size   int64
	device *CUDADevice
}

func (b *cudaBuffer) Size() int64 { return b.size }

func (b *cudaBuffer) Ptr() uintptr {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uintptr(b.ptr)
}

func (b *cudaBuffer) HostPointer() unsafe.Pointer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ptr
}

func (b *cudaBuffer) host() []byte {
	return unsafe.Slice((*byte)(b.ptr), b.size)
}

func (b *cudaBuffer) CopyToHost(dst []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ptr == nil {
		return fmt.Errorf("buffer already freed")
	}
	if int64(len(dst)) < b.size {
		return fmt.Errorf("destination buffer too small: %d < %d", len(dst), b.size)
	}
	if err := b.device.Sync(); err != nil {
		return err
	}
	copy(dst, b.host())
	return nil
}

func (b *cudaBuffer) CopyFromHost(src []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr == nil {
		return fmt.Errorf("buffer already freed")
	}
	if b.size < int64(len(src)) {
		return fmt.Errorf("buffer too small: %d < %d", b.size, len(src))
	}
	if err := b.device.Sync(); err != nil {
		return err
	}
	copy(b.host(), src)
	return nil
}

// Zero clears the padded allocation on the device and waits for it.
func (b *cudaBuffer) Zero() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr == nil {
		return fmt.Errorf("buffer already freed")
	}
	if err := check("clearing buffer", C.cudaMemset(b.ptr, 0, C.size_t(paddedSize(b.size)))); err != nil {
		return err
	}
	return b.device.Sync()
}

func (b *cudaBuffer) Free() error {
	b.device.mu.Lock()
	delete(b.device.live, b)
	b.device.mu.Unlock()

	return b.release()
}

func (b *cudaBuffer) release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr == nil {
		return nil
	}
	ptr := b.ptr
	b.ptr = nil
	return check("freeing buffer", C.cudaFree(ptr))
}

func (b *cudaBuffer) Device() Device { return b.device }
