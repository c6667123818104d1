package codec

import "testing"

func TestLocation_PackUnpackRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		loc  Location
	}{
		{
			name: "first record page",
			loc:  Location{Kind: KindRecord, Size: 17, Page: 1024},
		},
		{
			name: "zero size",
			loc:  Location{Kind: KindRecord, Size: 0, Page: 2048},
		},
		{
			name: "max size",
			loc:  Location{Kind: KindRecord, Size: 0xFFFF, Page: 4096},
		},
		{
			name: "max page offset",
			loc:  Location{Kind: KindRecord, Size: 1, Page: MaxPageOffset},
		},
		{
			name: "preallocated placeholder",
			loc:  Location{Kind: KindPrealloc, Size: 0, Page: 0},
		},
		{
			name: "large aligned offset",
			loc:  Location{Kind: KindRecord, Size: 512, Page: 63 << 20},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packed := tc.loc.Pack()
			got := Unpack(packed)
			if got != tc.loc {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, tc.loc)
			}
		})
	}
}

func TestLocation_PackLayout(t *testing.T) {
	// The packed form is a storage layout, so pin the exact bit
	// positions rather than just round-tripping.
	loc := Location{Kind: KindRecord, Size: 0xABCD, Page: 0x12_3456_7800}
	want := uint64(1)<<56 | uint64(0xABCD)<<40 | uint64(0x12_3456_7800)
	if got := loc.Pack(); got != want {
		t.Errorf("Pack() = %#016x, want %#016x", got, want)
	}
}

func TestLocation_ZeroMeansUnallocated(t *testing.T) {
	loc := Unpack(0)
	if loc.Kind != KindUnallocated {
		t.Errorf("Unpack(0).Kind = %d, want KindUnallocated", loc.Kind)
	}
	if loc.Size != 0 || loc.Page != 0 {
		t.Errorf("Unpack(0) = %+v, want zero location", loc)
	}
}

func TestLocation_PreallocPacksNonzero(t *testing.T) {
	// A preallocated slot carries no size or page, but its packed
	// form must still be distinguishable from an unallocated slot.
	packed := Location{Kind: KindPrealloc}.Pack()
	if packed == 0 {
		t.Fatal("preallocated descriptor packed to zero")
	}
	if got := Unpack(packed).Kind; got != KindPrealloc {
		t.Errorf("Kind after round trip = %d, want KindPrealloc", got)
	}
}

func TestLocation_PageMasked(t *testing.T) {
	// Offsets beyond 40 bits are truncated by Pack; the store never
	// produces them because the arena limit is far smaller.
	loc := Location{Kind: KindRecord, Size: 1, Page: MaxPageOffset + 1}
	if got := Unpack(loc.Pack()).Page; got != 0 {
		t.Errorf("overflowed page unpacked to %d, want 0", got)
	}
}
