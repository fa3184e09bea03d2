package bitarray

import "errors"

var (
	// ErrInvalidSize is returned when an element count or bit width is not
	// positive, or the array would not be addressable.
	ErrInvalidSize = errors.New("bitarray: invalid size")

	// ErrAllocation is returned when the device cannot provide a
	// host-addressable buffer of the required size.
	ErrAllocation = errors.New("bitarray: device allocation failed")

	// ErrInitialization is returned when the freshly allocated buffer cannot
	// be zero-filled. The buffer has already been released.
	ErrInitialization = errors.New("bitarray: buffer initialization failed")

	// ErrInvalidAddress is returned by the checked View operations for a bit
	// position or element index outside the array.
	ErrInvalidAddress = errors.New("bitarray: invalid bit address")

	// ErrElementTooWide is returned by ToIntegerChecked for elements wider
	// than 64 bits.
	ErrElementTooWide = errors.New("bitarray: element wider than 64 bits")
)
