package bitarray

import (
	"fmt"
	"unsafe"
)

// View is a non-owning descriptor of an Owner's buffer. It is a flat value
// meant to be passed by copy into kernels.
//
// SetBit, ClearBit, GetBit and ToInteger do no bounds checking: a position
// outside [0, BitsPerElement) or an element outside [0, ElementCount)
// silently touches neighbouring memory. Use the Checked variants when the
// inputs are not trusted.
//
// SetBit and ClearBit are plain read-modify-write on a byte. Concurrent
// writers to the same byte lose updates; writers to different elements never
// share a byte. Use SetBitAtomic and ClearBitAtomic when several goroutines
// write bits of the same element.
type View struct {
	data           unsafe.Pointer
	byteWidth      int
	elementCount   int
	bitsPerElement int
}

// Valid reports whether the view refers to a buffer.
func (v View) Valid() bool { return v.data != nil }

// ElementCount returns the number of elements.
func (v View) ElementCount() int { return v.elementCount }

// BitsPerElement returns the effective element width in bits.
func (v View) BitsPerElement() int { return v.bitsPerElement }

// ByteWidth returns the number of bits per storage byte.
func (v View) ByteWidth() int { return v.byteWidth }

// byteOffset returns the buffer offset of the byte holding bit pos of elem.
func (v View) byteOffset(pos, elem int) int {
	return elem*v.bitsPerElement/v.byteWidth + pos/v.byteWidth
}

func (v View) target(pos, elem int) (*byte, byte) {
	return (*byte)(unsafe.Add(v.data, v.byteOffset(pos, elem))), byte(1) << uint(pos%v.byteWidth)
}

// SetBit sets bit pos of element elem.
func (v View) SetBit(pos, elem int) {
	b, mask := v.target(pos, elem)
	*b |= mask
}

// ClearBit clears bit pos of element elem.
func (v View) ClearBit(pos, elem int) {
	b, mask := v.target(pos, elem)
	*b &^= mask
}

// GetBit reports whether bit pos of element elem is set.
func (v View) GetBit(pos, elem int) bool {
	b, mask := v.target(pos, elem)
	return *b&mask != 0
}

// ToInteger assembles element elem into an integer, byte 0 being the least
// significant. Elements must be at most 64 bits wide; for wider elements
// only the low 8 bytes contribute.
func (v View) ToInteger(elem int) uint64 {
	n := min(v.bitsPerElement/v.byteWidth, 8)
	base := unsafe.Add(v.data, elem*v.bitsPerElement/v.byteWidth)

	var x uint64
	for i := 0; i < n; i++ {
		x |= uint64(*(*byte)(unsafe.Add(base, i))) << (uint(i) * uint(v.byteWidth))
	}
	return x
}

// ElementBytes returns a copy of the bytes of element elem.
func (v View) ElementBytes(elem int) []byte {
	n := v.bitsPerElement / v.byteWidth
	base := (*byte)(unsafe.Add(v.data, elem*v.bitsPerElement/v.byteWidth))
	out := make([]byte, n)
	copy(out, unsafe.Slice(base, n))
	return out
}

// CheckAddress returns an error wrapping ErrInvalidAddress unless pos and
// elem address a bit inside the array.
func (v View) CheckAddress(pos, elem int) error {
	if err := v.checkElement(elem); err != nil {
		return err
	}
	if pos < 0 || pos >= v.bitsPerElement {
		return fmt.Errorf("%w: bit %d outside [0,%d)", ErrInvalidAddress, pos, v.bitsPerElement)
	}
	return nil
}

func (v View) checkElement(elem int) error {
	if v.data == nil {
		return fmt.Errorf("%w: view has no buffer", ErrInvalidAddress)
	}
	if elem < 0 || elem >= v.elementCount {
		return fmt.Errorf("%w: element %d outside [0,%d)", ErrInvalidAddress, elem, v.elementCount)
	}
	return nil
}

// SetBitChecked is SetBit with bounds checking.
func (v View) SetBitChecked(pos, elem int) error {
	if err := v.CheckAddress(pos, elem); err != nil {
		return err
	}
	v.SetBit(pos, elem)
	return nil
}

// ClearBitChecked is ClearBit with bounds checking.
func (v View) ClearBitChecked(pos, elem int) error {
	if err := v.CheckAddress(pos, elem); err != nil {
		return err
	}
	v.ClearBit(pos, elem)
	return nil
}

// GetBitChecked is GetBit with bounds checking.
func (v View) GetBitChecked(pos, elem int) (bool, error) {
	if err := v.CheckAddress(pos, elem); err != nil {
		return false, err
	}
	return v.GetBit(pos, elem), nil
}

// ToIntegerChecked is ToInteger with bounds checking. It fails with
// ErrElementTooWide instead of truncating elements wider than 64 bits.
func (v View) ToIntegerChecked(elem int) (uint64, error) {
	if err := v.checkElement(elem); err != nil {
		return 0, err
	}
	if v.bitsPerElement > 64 {
		return 0, fmt.Errorf("%w: %d bits", ErrElementTooWide, v.bitsPerElement)
	}
	return v.ToInteger(elem), nil
}
