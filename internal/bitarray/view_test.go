package bitarray

import (
	"errors"
	"math"
	"testing"
)

func TestNewIsZeroed(t *testing.T) {
	configs := []struct{ elements, bits int }{
		{1, 1}, {4, 3}, {3, 12}, {16, 64}, {2, 100},
	}

	for _, c := range configs {
		o := newOwner(t, c.elements, c.bits)
		v := o.View()
		for e := 0; e < v.ElementCount(); e++ {
			for p := 0; p < v.BitsPerElement(); p++ {
				if v.GetBit(p, e) {
					t.Fatalf("New(%d, %d): bit (%d, %d) set after construction", c.elements, c.bits, p, e)
				}
			}
		}
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	o := newOwner(t, 3, 12)
	v := o.View()

	for e := 0; e < v.ElementCount(); e++ {
		for p := 0; p < v.BitsPerElement(); p++ {
			v.SetBit(p, e)
			for e2 := 0; e2 < v.ElementCount(); e2++ {
				for p2 := 0; p2 < v.BitsPerElement(); p2++ {
					want := e2 == e && p2 == p
					if got := v.GetBit(p2, e2); got != want {
						t.Fatalf("after SetBit(%d, %d): GetBit(%d, %d) = %v, want %v", p, e, p2, e2, got, want)
					}
				}
			}
			v.ClearBit(p, e)
			if v.GetBit(p, e) {
				t.Fatalf("ClearBit(%d, %d) left the bit set", p, e)
			}
		}
	}
}

func TestSetBitIdempotent(t *testing.T) {
	o := newOwner(t, 2, 8)
	v := o.View()

	v.SetBit(5, 1)
	v.SetBit(5, 1)
	if got := v.ToInteger(1); got != 1<<5 {
		t.Errorf("ToInteger after double SetBit = %#x, want %#x", got, 1<<5)
	}

	v.ClearBit(3, 1)
	v.ClearBit(3, 1)
	if got := v.ToInteger(1); got != 1<<5 {
		t.Errorf("clearing an unset bit changed the element: %#x", got)
	}

	v.ClearBit(5, 1)
	v.ClearBit(5, 1)
	if got := v.ToInteger(1); got != 0 {
		t.Errorf("ToInteger after double ClearBit = %#x, want 0", got)
	}
}

func TestElementIsolation(t *testing.T) {
	o := newOwner(t, 4, 16)
	v := o.View()

	for p := 0; p < v.BitsPerElement(); p++ {
		v.SetBit(p, 1)
	}
	v.ClearBit(7, 1)

	if got := v.ToInteger(1); got != 0xFF7F {
		t.Errorf("element 1 = %#x, want 0xff7f", got)
	}
	for _, e := range []int{0, 2, 3} {
		if got := v.ToInteger(e); got != 0 {
			t.Errorf("element %d = %#x, want 0 after writes to element 1", e, got)
		}
	}
}

func TestToInteger(t *testing.T) {
	tests := []struct {
		name string
		bits int
		set  []int
		want uint64
	}{
		{"empty", 16, nil, 0},
		{"low byte", 16, []int{0}, 1},
		{"second byte", 16, []int{0, 9}, 513},
		{"high bit of 24", 24, []int{23}, 1 << 23},
		{"every byte", 32, []int{0, 8, 16, 24}, 0x01010101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOwner(t, 2, tt.bits)
			v := o.View()
			for _, p := range tt.set {
				v.SetBit(p, 1)
			}
			if got := v.ToInteger(1); got != tt.want {
				t.Errorf("ToInteger(1) = %d, want %d", got, tt.want)
			}
			if got := v.ToInteger(0); got != 0 {
				t.Errorf("ToInteger(0) = %d, want 0", got)
			}
		})
	}
}

func TestToIntegerFull64(t *testing.T) {
	o := newOwner(t, 2, 64)
	v := o.View()
	for p := 0; p < 64; p++ {
		v.SetBit(p, 0)
	}

	if got := v.ToInteger(0); got != math.MaxUint64 {
		t.Errorf("ToInteger(0) = %#x, want all ones", got)
	}
	got, err := v.ToIntegerChecked(0)
	if err != nil || got != math.MaxUint64 {
		t.Errorf("ToIntegerChecked(0) = %#x, %v", got, err)
	}
}

func TestToIntegerWideElement(t *testing.T) {
	o := newOwner(t, 2, 72)
	v := o.View()
	v.SetBit(0, 1)
	v.SetBit(70, 1)

	if got := v.ToInteger(1); got != 1 {
		t.Errorf("ToInteger(1) = %#x, want low 64 bits only (0x1)", got)
	}
	if _, err := v.ToIntegerChecked(1); !errors.Is(err, ErrElementTooWide) {
		t.Errorf("ToIntegerChecked on 72-bit element: error = %v, want ErrElementTooWide", err)
	}

	b := v.ElementBytes(1)
	if len(b) != 9 {
		t.Fatalf("ElementBytes length = %d, want 9", len(b))
	}
	if b[0] != 0x01 || b[8] != 0x40 {
		t.Errorf("ElementBytes = %x, want first byte 01 and last byte 40", b)
	}
}

func TestTwoByFiveScenario(t *testing.T) {
	o := newOwner(t, 2, 5)
	if o.BitsPerElement() != 8 || o.SizeBytes() != 2 {
		t.Fatalf("New(2, 5) = %d bits, %d bytes; want 8 bits, 2 bytes", o.BitsPerElement(), o.SizeBytes())
	}

	v := o.View()
	v.SetBit(2, 0)
	if !v.GetBit(2, 0) {
		t.Error("bit 2 of element 0 not set")
	}
	if v.GetBit(2, 1) {
		t.Error("setting element 0 leaked into element 1")
	}
	if got := v.ToInteger(0); got != 4 {
		t.Errorf("element 0 = %d, want 4", got)
	}
	if got := v.ToInteger(1); got != 0 {
		t.Errorf("element 1 = %d, want 0", got)
	}

	v.SetBit(0, 0)
	v.SetBit(7, 1)

	if got := v.ToInteger(0); got != 5 {
		t.Errorf("element 0 = %d, want 5", got)
	}
	if got := v.ToInteger(1); got != 128 {
		t.Errorf("element 1 = %d, want 128", got)
	}

	snap, err := o.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap[0] != 0x05 || snap[1] != 0x80 {
		t.Errorf("buffer = %x, want 0580", snap)
	}
}

func TestCheckedVariants(t *testing.T) {
	o := newOwner(t, 3, 10)
	v := o.View()

	bad := []struct {
		name      string
		pos, elem int
	}{
		{"negative position", -1, 0},
		{"position past width", 16, 0},
		{"negative element", 0, -1},
		{"element past count", 0, 3},
	}

	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.SetBitChecked(tt.pos, tt.elem); !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("SetBitChecked error = %v, want ErrInvalidAddress", err)
			}
			if err := v.ClearBitChecked(tt.pos, tt.elem); !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("ClearBitChecked error = %v, want ErrInvalidAddress", err)
			}
			if _, err := v.GetBitChecked(tt.pos, tt.elem); !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("GetBitChecked error = %v, want ErrInvalidAddress", err)
			}
		})
	}

	if _, err := v.ToIntegerChecked(3); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("ToIntegerChecked(3) error = %v, want ErrInvalidAddress", err)
	}

	// Rounded width is addressable even though 10 bits were requested.
	if err := v.SetBitChecked(15, 2); err != nil {
		t.Fatalf("SetBitChecked(15, 2) failed: %v", err)
	}
	set, err := v.GetBitChecked(15, 2)
	if err != nil || !set {
		t.Errorf("GetBitChecked(15, 2) = %v, %v; want true, nil", set, err)
	}
	if err := v.ClearBitChecked(15, 2); err != nil {
		t.Fatalf("ClearBitChecked(15, 2) failed: %v", err)
	}
	if v.GetBit(15, 2) {
		t.Error("ClearBitChecked left the bit set")
	}
}

func TestZeroViewIsInvalid(t *testing.T) {
	var v View
	if v.Valid() {
		t.Error("zero View reports valid")
	}
	if err := v.CheckAddress(0, 0); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("CheckAddress on zero View = %v, want ErrInvalidAddress", err)
	}
}

func TestViewInKernels(t *testing.T) {
	o := newOwner(t, 256, 8)
	v := o.View()

	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		go func(kv View, w int) {
			for e := w; e < kv.ElementCount(); e += 4 {
				kv.SetBit(e%8, e)
			}
			done <- struct{}{}
		}(v, w)
	}
	for w := 0; w < 4; w++ {
		<-done
	}

	for e := 0; e < v.ElementCount(); e++ {
		if got := v.ToInteger(e); got != 1<<uint(e%8) {
			t.Fatalf("element %d = %#x, want %#x", e, got, 1<<uint(e%8))
		}
	}
}

func BenchmarkSetBit(b *testing.B) {
	o, err := New(nil, 1024, 64)
	if err != nil {
		b.Fatal(err)
	}
	defer o.Free()
	v := o.View()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.SetBit(i%64, i%1024)
	}
}

func BenchmarkSetBitAtomic(b *testing.B) {
	o, err := New(nil, 1024, 64)
	if err != nil {
		b.Fatal(err)
	}
	defer o.Free()
	v := o.View()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.SetBitAtomic(i%64, i%1024)
	}
}
