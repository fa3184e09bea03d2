package bitarray

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Go has no byte-sized atomics, so the atomic variants operate on the
// aligned 32-bit word holding the target byte. Device buffers are 8-byte
// aligned and padded to 8 bytes, so that word is always inside the
// allocation.

func (v View) word(pos, elem int) (*uint32, uint32) {
	off := uintptr(v.byteOffset(pos, elem))
	lane := off & 3
	if cpu.IsBigEndian {
		lane = 3 - lane
	}
	w := (*uint32)(unsafe.Add(v.data, off&^3))
	return w, uint32(1) << (uint32(lane)*8 + uint32(pos%v.byteWidth))
}

// update applies f to the word with a compare-and-swap loop.
func update(w *uint32, f func(uint32) uint32) {
	for {
		old := atomic.LoadUint32(w)
		if atomic.CompareAndSwapUint32(w, old, f(old)) {
			return
		}
	}
}

// SetBitAtomic sets bit pos of element elem atomically. Concurrent
// SetBitAtomic and ClearBitAtomic calls on the same byte never lose updates.
// Mixing them with the plain SetBit/ClearBit on the same byte does.
func (v View) SetBitAtomic(pos, elem int) {
	w, mask := v.word(pos, elem)
	update(w, func(x uint32) uint32 { return x | mask })
}

// ClearBitAtomic clears bit pos of element elem atomically.
func (v View) ClearBitAtomic(pos, elem int) {
	w, mask := v.word(pos, elem)
	update(w, func(x uint32) uint32 { return x &^ mask })
}

// GetBitAtomic reports whether bit pos of element elem is set, using an
// atomic load.
func (v View) GetBitAtomic(pos, elem int) bool {
	w, mask := v.word(pos, elem)
	return atomic.LoadUint32(w)&mask != 0
}
