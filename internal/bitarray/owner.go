// Package bitarray stores fixed-width bit elements packed into a single
// device buffer.
//
// An Owner allocates, zero-fills and frees the buffer. Kernels work through
// a View, a small value that can be copied into any number of goroutines.
// Each element's width is rounded up to whole bytes, so elements never share
// a byte and concurrent writers touching different elements never race.
//
// A View does not keep its Owner alive. Using a View after the Owner has
// been freed is invalid and is not detected.
package bitarray

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/xupit3r/bitgrid/internal/gpu"
	"github.com/xupit3r/bitgrid/internal/logging"
)

// ByteWidth is the number of bits per storage byte.
const ByteWidth = 8

// RoundBits returns the effective element width for a requested width: the
// smallest multiple of ByteWidth that is >= requested.
func RoundBits(requested int) int {
	return (requested + ByteWidth - 1) / ByteWidth * ByteWidth
}

// BufferSize returns the number of bytes needed for elementCount elements of
// bitsPerElement bits each.
func BufferSize(elementCount, bitsPerElement int) int64 {
	return (int64(elementCount)*int64(bitsPerElement) + ByteWidth - 1) / ByteWidth
}

// Owner holds the device buffer backing a packed bit array.
type Owner struct {
	buf            gpu.Buffer
	data           unsafe.Pointer
	elementCount   int
	bitsPerElement int
	size           int64

	mu    sync.Mutex
	freed bool
	log   *logrus.Entry
}

// New allocates a zeroed bit array of elementCount elements on dev. The
// requested width is rounded up to a multiple of ByteWidth; only the rounded
// width is kept. A nil dev selects the CPU device.
//
// New either returns a fully initialized Owner or an error wrapping
// ErrInvalidSize, ErrAllocation or ErrInitialization; it never leaves a
// buffer allocated on failure.
func New(dev gpu.Device, elementCount, requestedBitsPerElement int) (*Owner, error) {
	if elementCount <= 0 {
		return nil, fmt.Errorf("%w: element count %d", ErrInvalidSize, elementCount)
	}
	if requestedBitsPerElement <= 0 {
		return nil, fmt.Errorf("%w: bits per element %d", ErrInvalidSize, requestedBitsPerElement)
	}
	if requestedBitsPerElement > math.MaxInt-ByteWidth {
		return nil, fmt.Errorf("%w: bits per element %d", ErrInvalidSize, requestedBitsPerElement)
	}

	bits := RoundBits(requestedBitsPerElement)
	// Addressing computes elem*bits in int.
	if elementCount > math.MaxInt/bits {
		return nil, fmt.Errorf("%w: %d elements of %d bits overflow the address space",
			ErrInvalidSize, elementCount, bits)
	}
	size := BufferSize(elementCount, bits)

	if dev == nil {
		dev = gpu.NewCPUDevice()
	}
	log := logging.WithComponent("bitarray").WithFields(logrus.Fields{
		"device":   dev.Name(),
		"elements": elementCount,
		"bits":     bits,
		"bytes":    size,
	})

	buf, err := dev.Allocate(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	hb, ok := buf.(gpu.HostBuffer)
	if !ok {
		buf.Free()
		return nil, fmt.Errorf("%w: %s buffers are not host-addressable", ErrAllocation, dev.Name())
	}
	data := hb.HostPointer()
	if data == nil {
		buf.Free()
		return nil, fmt.Errorf("%w: device returned no host mapping", ErrAllocation)
	}

	if err := buf.Zero(); err != nil {
		if ferr := buf.Free(); ferr != nil {
			log.Warnf("releasing buffer after failed zero-fill: %v", ferr)
		}
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	log.Debug("allocated bit array")

	return &Owner{
		buf:            buf,
		data:           data,
		elementCount:   elementCount,
		bitsPerElement: bits,
		size:           size,
		log:            log,
	}, nil
}

// Free releases the device buffer. Only the first call does any work; later
// calls, and calls on a nil Owner, return nil. Views obtained earlier become
// invalid.
func (o *Owner) Free() error {
	if o == nil {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.freed || o.buf == nil {
		return nil
	}
	o.freed = true
	o.data = nil

	if err := o.buf.Free(); err != nil {
		return fmt.Errorf("freeing bit array buffer: %w", err)
	}
	o.log.Debug("freed bit array")
	return nil
}

// ElementCount returns the number of elements.
func (o *Owner) ElementCount() int { return o.elementCount }

// BitsPerElement returns the effective (rounded) element width in bits.
func (o *Owner) BitsPerElement() int { return o.bitsPerElement }

// SizeBytes returns the size of the buffer in bytes.
func (o *Owner) SizeBytes() int64 { return o.size }

// Device returns the device holding the buffer.
func (o *Owner) Device() gpu.Device { return o.buf.Device() }

// View returns a descriptor of the buffer for use in kernels. It allocates
// nothing; every View of the same Owner is equivalent. After Free the
// returned View is the zero View.
func (o *Owner) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.freed {
		return View{}
	}
	return View{
		data:           o.data,
		byteWidth:      ByteWidth,
		elementCount:   o.elementCount,
		bitsPerElement: o.bitsPerElement,
	}
}

// Snapshot copies the whole buffer into host memory. Callers must not run
// kernels against the array concurrently.
func (o *Owner) Snapshot() ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.freed {
		return nil, fmt.Errorf("snapshot of freed bit array")
	}

	out := make([]byte, o.size)
	if err := o.buf.CopyToHost(out); err != nil {
		return nil, fmt.Errorf("copying bit array to host: %w", err)
	}
	return out, nil
}
