package bitarray

import (
	"sync"
	"testing"
)

func TestAtomicSetNoLostUpdates(t *testing.T) {
	o := newOwner(t, 4, 64)
	v := o.View()

	var wg sync.WaitGroup
	for p := 0; p < 64; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for e := 0; e < v.ElementCount(); e++ {
				v.SetBitAtomic(p, e)
			}
		}(p)
	}
	wg.Wait()

	for e := 0; e < v.ElementCount(); e++ {
		if got := v.ToInteger(e); got != ^uint64(0) {
			t.Errorf("element %d = %#x after concurrent sets, want all ones", e, got)
		}
	}
}

func TestAtomicClearNoLostUpdates(t *testing.T) {
	o := newOwner(t, 1, 32)
	v := o.View()
	for p := 0; p < 32; p++ {
		v.SetBit(p, 0)
	}

	var wg sync.WaitGroup
	for p := 0; p < 32; p += 2 {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				v.ClearBitAtomic(p, 0)
				v.SetBitAtomic(p+1, 0)
			}
		}(p)
	}
	wg.Wait()

	if got := v.ToInteger(0); got != 0xAAAAAAAA {
		t.Errorf("element = %#x, want 0xaaaaaaaa", got)
	}
}

func TestAtomicMatchesPlain(t *testing.T) {
	// Three one-byte elements: the last byte's word extends into padding.
	o := newOwner(t, 3, 8)
	v := o.View()

	for e := 0; e < 3; e++ {
		for p := 0; p < 8; p++ {
			v.SetBitAtomic(p, e)
			if !v.GetBit(p, e) || !v.GetBitAtomic(p, e) {
				t.Fatalf("SetBitAtomic(%d, %d) not visible", p, e)
			}
			for e2 := 0; e2 < 3; e2++ {
				want := uint64(0)
				if e2 == e {
					want = 1 << uint(p)
				}
				if got := v.ToInteger(e2); got != want {
					t.Fatalf("after SetBitAtomic(%d, %d): element %d = %#x, want %#x", p, e, e2, got, want)
				}
			}
			v.ClearBitAtomic(p, e)
			if v.GetBitAtomic(p, e) {
				t.Fatalf("ClearBitAtomic(%d, %d) left the bit set", p, e)
			}
		}
	}
}
