package bits

// ZigZagDecode64 reverses the signed-to-unsigned zig-zag mapping
// (n<<1) ^ (n>>bitwidth-1). Given the encoded unsigned word, it recovers
// the signed value: (n >> 1) XOR -(n & 1).
func ZigZagDecode64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

// ZigZagEncode64 is the inverse of ZigZagDecode64, used to build round-trip
// tests.
func ZigZagEncode64(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

func ZigZagDecode32(n uint32) int32 {
	return int32(n>>1) ^ -int32(n&1)
}

func ZigZagEncode32(n int32) uint32 {
	return uint32(n<<1) ^ uint32(n>>31)
}

func ZigZagDecode16(n uint16) int16 {
	return int16(n>>1) ^ -int16(n&1)
}

func ZigZagEncode16(n int16) uint16 {
	return uint16(n<<1) ^ uint16(n>>15)
}
