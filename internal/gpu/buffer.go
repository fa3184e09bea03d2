package gpu

import "unsafe"

// Buffer represents a block of device memory
type Buffer interface {
	// Size returns the size of the buffer in bytes
	Size() int64

	// Ptr returns the raw device address of the buffer (for GPU APIs)
	Ptr() uintptr

	// CopyToHost copies buffer data to host memory
	CopyToHost(dst []byte) error

	// CopyFromHost copies host memory to the buffer
	CopyFromHost(src []byte) error

	// Zero sets every byte of the buffer to 0
	Zero() error

	// Free releases the buffer
	Free() error

	// Device returns the device that owns this buffer
	Device() Device
}

// HostBuffer is a Buffer whose memory can be loaded from and stored to
// directly by host code: plain host memory, CUDA managed memory or a Metal
// shared-storage buffer.
//
// The memory behind HostPointer is at least 8-byte aligned and is backed up
// to the next multiple of 8 bytes past Size, so the aligned 32-bit word
// containing any byte of the buffer is addressable.
type HostBuffer interface {
	Buffer

	// HostPointer returns the host-visible address of the first byte, or nil
	// once the buffer has been freed.
	HostPointer() unsafe.Pointer
}

// paddedSize rounds size up to the allocation granule used by host buffers.
func paddedSize(size int64) int64 {
	return (size + 7) &^ 7
}
