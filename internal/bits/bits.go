// Package bits implements the small, fixed-width bit and byte
// manipulations the RNTuple page decoder needs to reverse column
// encodings: byte-lane transposition (split), bit expansion, zig-zag, and
// delta.
package bits

// ByteCount returns the number of bytes needed to hold n bits.
func ByteCount(n int) int { return (n + 7) / 8 }
