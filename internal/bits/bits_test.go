package bits_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lobis/uproot-go/internal/bits"
)

func TestSplitUnsplitRoundTrip(t *testing.T) {
	for _, width := range []int{2, 4, 8} {
		t.Run(widthName(width), func(t *testing.T) {
			n := 37
			src := make([]byte, n*width)
			rand.New(rand.NewSource(1)).Read(src)

			split := make([]byte, len(src))
			bits.Split(split, src, width)

			got := make([]byte, len(src))
			bits.Unsplit(got, split, width)

			if string(got) != string(src) {
				t.Fatalf("split/unsplit round trip mismatch for width %d", width)
			}
		})
	}
}

func widthName(w int) string {
	switch w {
	case 2:
		return "width2"
	case 4:
		return "width4"
	case 8:
		return "width8"
	default:
		return "width?"
	}
}

func TestUnpackBool(t *testing.T) {
	src := []byte{0b00000001, 0b00000010}
	got := bits.UnpackBool(nil, src, 16)

	want := []bool{
		true, false, false, false, false, false, false, false,
		false, true, false, false, false, false, false, false,
	}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestPackUnpackBoolRoundTrip(t *testing.T) {
	src := []bool{true, false, true, true, false, false, true, false, true}
	packed := bits.PackBool(nil, src)
	got := bits.UnpackBool(nil, packed, len(src))
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("bit %d: got %v want %v", i, got[i], src[i])
		}
	}
}

func TestZigZagRoundTrip64(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, math.MaxInt64, math.MinInt64, 12345, -98765}
	for _, v := range values {
		encoded := bits.ZigZagEncode64(v)
		if got := bits.ZigZagDecode64(encoded); got != v {
			t.Fatalf("zigzag64 round trip: encode(%d)=%d decode=%d", v, encoded, got)
		}
	}
}

func TestZigZagRoundTrip32(t *testing.T) {
	values := []int32{0, 1, -1, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		if got := bits.ZigZagDecode32(bits.ZigZagEncode32(v)); got != v {
			t.Fatalf("zigzag32 round trip failed for %d, got %d", v, got)
		}
	}
}

func TestZigZagRoundTrip16(t *testing.T) {
	values := []int16{0, 1, -1, math.MaxInt16, math.MinInt16}
	for _, v := range values {
		if got := bits.ZigZagDecode16(bits.ZigZagEncode16(v)); got != v {
			t.Fatalf("zigzag16 round trip failed for %d, got %d", v, got)
		}
	}
}

func TestPrefixSum32(t *testing.T) {
	data := []int32{1, 2, 3, 4}
	bits.PrefixSum32(data)
	want := []int32{1, 3, 6, 10}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("index %d: got %d want %d", i, data[i], want[i])
		}
	}
}
