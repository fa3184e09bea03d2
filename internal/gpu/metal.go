//go:build darwin && cgo

package gpu

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Metal -framework Foundation

#import <Metal/Metal.h>
#import <Foundation/Foundation.h>
#include <string.h>
#include <stdlib.h>

typedef struct {
    void* device;
    void* queue;
} mtlContext;

static int mtlOpen(mtlContext* ctx) {
    @autoreleasepool {
        id<MTLDevice> device = MTLCreateSystemDefaultDevice();
        if (device == nil) {
            return 0;
        }
        id<MTLCommandQueue> queue = [device newCommandQueue];
        if (queue == nil) {
            return 0;
        }
        ctx->device = (void*)CFBridgingRetain(device);
        ctx->queue = (void*)CFBridgingRetain(queue);
        return 1;
    }
}

static void mtlClose(mtlContext* ctx) {
    if (ctx->queue != NULL) {
        CFBridgingRelease(ctx->queue);
        ctx->queue = NULL;
    }
    if (ctx->device != NULL) {
        CFBridgingRelease(ctx->device);
        ctx->device = NULL;
    }
}

// caller frees the result
static char* mtlName(void* device) {
    @autoreleasepool {
        id<MTLDevice> d = (__bridge id<MTLDevice>)device;
        return strdup([[d name] UTF8String]);
    }
}

// mtlShared allocates a shared-storage buffer and returns its CPU mapping
// through contents.
static void* mtlShared(void* device, size_t size, void** contents) {
    @autoreleasepool {
        id<MTLDevice> d = (__bridge id<MTLDevice>)device;
        id<MTLBuffer> b = [d newBufferWithLength:size options:MTLResourceStorageModeShared];
        if (b == nil) {
            return NULL;
        }
        *contents = [b contents];
        return (void*)CFBridgingRetain(b);
    }
}

static void mtlRelease(void* buffer) {
    CFBridgingRelease(buffer);
}

// mtlWait commits an empty command buffer and waits for it, which drains
// work queued before it.
static void mtlWait(void* queue) {
    @autoreleasepool {
        id<MTLCommandQueue> q = (__bridge id<MTLCommandQueue>)queue;
        id<MTLCommandBuffer> cb = [q commandBuffer];
        [cb commit];
        [cb waitUntilCompleted];
    }
}

static size_t mtlAllocated(void* device) {
    return [(__bridge id<MTLDevice>)device currentAllocatedSize];
}

static size_t mtlWorkingSet(void* device) {
    return [(__bridge id<MTLDevice>)device recommendedMaxWorkingSetSize];
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

// MetalDevice allocates bit-array storage on the system default Metal GPU.
// Buffers use shared storage, so kernels running on the host address the
// same bytes the GPU sees.
type MetalDevice struct {
	mu   sync.Mutex
	ctx  C.mtlContext
	name string
	live map[*metalBuffer]struct{}
}

// NewMetalDevice opens the system default Metal device.
func NewMetalDevice() (*MetalDevice, error) {
	d := &MetalDevice{live: make(map[*metalBuffer]struct{})}
	if C.mtlOpen(&d.ctx) == 0 {
		C.mtlClose(&d.ctx)
		return nil, fmt.Errorf("no Metal device available")
	}

	cname := C.mtlName(d.ctx.device)
	d.name = C.GoString(cname)
	C.free(unsafe.Pointer(cname))
	return d, nil
}

func (d *MetalDevice) Type() DeviceType { return DeviceTypeGPU }
func (d *MetalDevice) Name() string     { return d.name }

func (d *MetalDevice) Allocate(size int64) (Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size: %d", size)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx.device == nil {
		return nil, fmt.Errorf("metal device closed")
	}

	var contents unsafe.Pointer
	handle := C.mtlShared(d.ctx.device, C.size_t(paddedSize(size)), &contents)
	if handle == nil || contents == nil {
		return nil, fmt.Errorf("metal: allocating %d byte shared buffer failed", size)
	}

	b := &metalBuffer{
		handle: handle,
		data:   unsafe.Slice((*byte)(contents), paddedSize(size)),
		size:   size,
		device: d,
	}
	d.live[b] = struct{}{}
	return b, nil
}

func (d *MetalDevice) Copy(dst, src Buffer, size int64) error {
	db, ok := dst.(*metalBuffer)
	if !ok {
		return fmt.Errorf("dst is not a Metal buffer")
	}
	sb, ok := src.(*metalBuffer)
	if !ok {
		return fmt.Errorf("src is not a Metal buffer")
	}
	if size > db.size || size > sb.size {
		return fmt.Errorf("copy size %d exceeds buffer size (dst: %d, src: %d)", size, db.size, sb.size)
	}

	sb.mu.RLock()
	defer sb.mu.RUnlock()
	if db != sb {
		db.mu.Lock()
		defer db.mu.Unlock()
	}
	if db.data == nil || sb.data == nil {
		return fmt.Errorf("copy involves a freed buffer")
	}
	copy(db.data[:size], sb.data[:size])
	return nil
}

// Sync waits for queued GPU work. Host kernels write shared memory
// directly and need no synchronization.
func (d *MetalDevice) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx.queue == nil {
		return fmt.Errorf("metal device closed")
	}
	C.mtlWait(d.ctx.queue)
	return nil
}

// Free releases every live buffer and the device itself.
func (d *MetalDevice) Free() error {
	d.mu.Lock()
	live := d.live
	d.live = make(map[*metalBuffer]struct{})
	d.mu.Unlock()

	for b := range live {
		b.release()
	}

	d.mu.Lock()
	C.mtlClose(&d.ctx)
	d.mu.Unlock()
	return nil
}

func (d *MetalDevice) MemoryUsage() (int64, int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx.device == nil {
		return 0, 0
	}
	return int64(C.mtlAllocated(d.ctx.device)), int64(C.mtlWorkingSet(d.ctx.device))
}

// metalBuffer is a shared-storage MTLBuffer. data maps its contents and
// stays valid until release.
type metalBuffer struct {
	mu     sync.RWMutex
	handle unsafe.Pointer
	data   []byte
	size   int64
	device *MetalDevice
}

func (b *metalBuffer) Size() int64 { return b.size }

func (b *metalBuffer) Ptr() uintptr {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uintptr(b.handle)
}

func (b *metalBuffer) HostPointer() unsafe.Pointer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil
	}
	return unsafe.Pointer(&b.data[0])
}

func (b *metalBuffer) Zero() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return fmt.Errorf("buffer already freed")
	}
	clear(b.data)
	return nil
}

func (b *metalBuffer) CopyToHost(dst []byte) error {
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

func (b *metalBuffer) CopyFromHost(src []byte) error {
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

func (b *metalBuffer) Free() error {
	b.device.mu.Lock()
	delete(b.device.live, b)
	b.device.mu.Unlock()

	b.release()
	return nil
}

func (b *metalBuffer) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle != nil {
		C.mtlRelease(b.handle)
		b.handle = nil
		b.data = nil
	}
}

func (b *metalBuffer) Device() Device { return b.device }
