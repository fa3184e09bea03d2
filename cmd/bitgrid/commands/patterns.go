package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/xupit3r/bitgrid/internal/bitarray"
	"github.com/xupit3r/bitgrid/internal/kernel"
)

// Pattern decides the value of bit pos of element elem.
type Pattern func(elem, pos int) bool

var patterns = map[string]Pattern{
	// binary encoding of the element index
	"index": func(elem, pos int) bool {
		return uint64(elem)>>uint(pos)&1 == 1
	},
	// reflected Gray code of the element index, as projected by
	// structured-light scanners
	"gray": func(elem, pos int) bool {
		g := uint64(elem) ^ uint64(elem)>>1
		return g>>uint(pos)&1 == 1
	},
	"checker": func(elem, pos int) bool {
		return (elem+pos)%2 == 0
	},
	"diagonal": func(elem, pos int) bool {
		return pos%8 == elem%8
	},
	"ones": func(elem, pos int) bool {
		return true
	},
}

func patternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupPattern(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q (valid: %v)", name, patternNames())
	}
	return p, nil
}

// fill writes pattern p into every bit of the array behind view. With
// perBit set it launches one thread per bit; threads then share bytes, so
// the atomic bit operations are used. Otherwise each thread owns one
// element and plain writes are safe.
func fill(ctx context.Context, l *kernel.Launcher, view bitarray.View, p Pattern, perBit bool) error {
	bits := view.BitsPerElement()

	if perBit {
		return l.Launch(ctx, view.ElementCount()*bits, func(tid int) {
			elem, pos := tid/bits, tid%bits
			if p(elem, pos) {
				view.SetBitAtomic(pos, elem)
			} else {
				view.ClearBitAtomic(pos, elem)
			}
		})
	}

	return l.Launch(ctx, view.ElementCount(), func(elem int) {
		for pos := 0; pos < bits; pos++ {
			if p(elem, pos) {
				view.SetBit(pos, elem)
			} else {
				view.ClearBit(pos, elem)
			}
		}
	})
}
